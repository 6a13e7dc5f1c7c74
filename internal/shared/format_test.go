package shared

import "testing"

func TestFormatTrackTime(t *testing.T) {
	cases := []struct {
		name string
		ms   int64
		want string
	}{
		{"Zero", 0, "0:00"},
		{"Under a minute", 45000, "0:45"},
		{"Exact minute", 60000, "1:00"},
		{"Typical track", 214500, "3:34"},
		{"Over ten minutes", 754000, "12:34"},
		{"Negative clamps to zero", -5000, "0:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatTrackTime(tc.ms); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
