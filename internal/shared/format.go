package shared

import "fmt"

// FormatTrackTime renders a millisecond offset as a m:ss playback clock.
// Negative offsets clamp to 0:00.
func FormatTrackTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}
