package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spotterm/spotterm/internal/auth"
	"github.com/spotterm/spotterm/internal/models"
	"github.com/spotterm/spotterm/internal/shared"
	th "github.com/spotterm/spotterm/internal/testing"
	"github.com/urfave/cli/v3"
)

// stubPlayer is a canned Player for exercising command actions without a
// live credential.
type stubPlayer struct {
	state        models.PlayerState
	playbackErr  error
	playlists    []models.Playlist
	playlistsErr error
	skipErr      error
	startErr     error

	started []string
}

func (s *stubPlayer) CurrentPlayback(context.Context) (models.PlayerState, error) {
	return s.state, s.playbackErr
}

func (s *stubPlayer) SkipNext(context.Context) error     { return s.skipErr }
func (s *stubPlayer) SkipPrevious(context.Context) error { return s.skipErr }

func (s *stubPlayer) Playlists(context.Context, int) ([]models.Playlist, error) {
	return s.playlists, s.playlistsErr
}

func (s *stubPlayer) StartPlaylist(_ context.Context, contextURI string) error {
	s.started = append(s.started, contextURI)
	return s.startErr
}

func (s *stubPlayer) FetchArtwork(context.Context, string) ([]byte, error) { return nil, nil }
func (s *stubPlayer) Name() string                                         { return "stub" }

func testConfig(t *testing.T) *shared.Config {
	t.Helper()

	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Credentials.Spotify.ClientID = "client-id"
	config.Credentials.Spotify.ClientSecret = "client-secret"
	config.Tokens.Path = filepath.Join(dir, "token.json")
	config.Database.Path = filepath.Join(dir, "test.db")
	return config
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{Name: "spotterm", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"spotterm"}, args...))
}

func TestAuthStatus(t *testing.T) {
	t.Run("No record", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out})

		if err := run(t, r, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out.String(), "No credential record") {
			t.Errorf("expected missing-record message, got %q", out.String())
		}
	})

	t.Run("With record", func(t *testing.T) {
		var out bytes.Buffer
		config := testConfig(t)
		r := NewRunner(RunnerOpts{Config: config, Output: &out})

		err := auth.NewStore(config.Tokens.Path).Save(auth.TokenRecord{
			AccessToken:  "access",
			TokenType:    "Bearer",
			ExpiresIn:    3600,
			RefreshToken: "refresh",
		})
		if err != nil {
			t.Fatal(err)
		}

		if err := run(t, r, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out.String(), "refresh token present") {
			t.Errorf("expected refresh token report, got %q", out.String())
		}
	})
}

func TestPlayerCommands(t *testing.T) {
	track := &models.Track{
		ID:         "t1",
		Name:       "Song",
		Artists:    []models.Artist{{Name: "Artist"}},
		DurationMS: 180000,
	}

	t.Run("Status with playback", func(t *testing.T) {
		var out bytes.Buffer
		player := &stubPlayer{state: models.PlayerState{IsPlaying: true, Item: track, ProgressMS: 30000}}
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out, Player: player})

		if err := run(t, r, "player", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out.String(), "Song") || !strings.Contains(out.String(), "playing") {
			t.Errorf("expected track and status in output, got %q", out.String())
		}
		if !strings.Contains(out.String(), "0:30 / 3:00") {
			t.Errorf("expected playback clock in output, got %q", out.String())
		}
	})

	t.Run("Status with nothing playing", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out, Player: &stubPlayer{}})

		if err := run(t, r, "player", "status"); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), "Nothing playing") {
			t.Errorf("expected empty-state message, got %q", out.String())
		}
	})

	t.Run("Status as JSON", func(t *testing.T) {
		var out bytes.Buffer
		player := &stubPlayer{state: models.PlayerState{IsPlaying: true, Item: track}}
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out, Player: player})

		if err := run(t, r, "player", "status", "--json"); err != nil {
			t.Fatal(err)
		}

		var state models.PlayerState
		if err := json.Unmarshal(out.Bytes(), &state); err != nil {
			t.Fatalf("expected valid JSON, got %v: %q", err, out.String())
		}
		if state.Item == nil || state.Item.Name != "Song" {
			t.Errorf("expected track in JSON output, got %+v", state)
		}
	})

	t.Run("Next and previous", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out, Player: &stubPlayer{}})

		if err := run(t, r, "player", "next"); err != nil {
			t.Fatal(err)
		}
		if err := run(t, r, "player", "prev"); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("Skip failure surfaces", func(t *testing.T) {
		player := &stubPlayer{skipErr: errors.New("restricted")}
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Player: player})

		err := run(t, r, "player", "next")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Play builds the playlist URI", func(t *testing.T) {
		var out bytes.Buffer
		player := &stubPlayer{}
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out, Player: player})

		if err := run(t, r, "player", "play", "--id", "abc123"); err != nil {
			t.Fatal(err)
		}
		if len(player.started) != 1 || player.started[0] != "spotify:playlist:abc123" {
			t.Errorf("expected playlist context URI, got %v", player.started)
		}
	})
}

func TestPlaylistsCommand(t *testing.T) {
	playlists := []models.Playlist{
		{ID: "a", Name: "Morning", TrackCount: 12},
		{ID: "b", Name: "Focus", Description: "Deep work", TrackCount: 40},
	}

	t.Run("Plain output", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out, Player: &stubPlayer{playlists: playlists}})

		if err := run(t, r, "playlists"); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), "Found 2 playlists") {
			t.Errorf("expected playlist count, got %q", out.String())
		}
		if !strings.Contains(out.String(), "Focus") || !strings.Contains(out.String(), "Deep work") {
			t.Errorf("expected playlist details, got %q", out.String())
		}
	})

	t.Run("JSON output", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out, Player: &stubPlayer{playlists: playlists}})

		if err := run(t, r, "playlists", "--json"); err != nil {
			t.Fatal(err)
		}

		var decoded []models.Playlist
		if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
			t.Fatalf("expected valid JSON, got %v: %q", err, out.String())
		}
		if len(decoded) != 2 {
			t.Errorf("expected 2 playlists, got %d", len(decoded))
		}
	})

	t.Run("Failed output write", func(t *testing.T) {
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &th.FWriter{}, Player: &stubPlayer{playlists: playlists}})

		if err := run(t, r, "playlists", "--json"); err == nil {
			t.Error("expected write failure to surface")
		}
	})
}

func TestHistoryCommands(t *testing.T) {
	t.Run("Empty history", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out})

		if err := run(t, r, "history", "list"); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), "No plays recorded yet") {
			t.Errorf("expected empty-history message, got %q", out.String())
		}
	})

	t.Run("Clear", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out})

		if err := run(t, r, "history", "clear"); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), "Play history cleared") {
			t.Errorf("expected confirmation, got %q", out.String())
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("Config", func(t *testing.T) {
		var out bytes.Buffer
		configPath := filepath.Join(t.TempDir(), "config.toml")
		r := NewRunner(RunnerOpts{Config: testConfig(t), Output: &out})

		if err := run(t, r, "setup", "config", "--config", configPath); err != nil {
			t.Fatal(err)
		}
		th.AssertFileExists(t, configPath)

		if err := run(t, r, "setup", "config", "--config", configPath); err == nil {
			t.Error("expected error when the config already exists")
		}
	})

	t.Run("Database", func(t *testing.T) {
		var out bytes.Buffer
		config := testConfig(t)
		r := NewRunner(RunnerOpts{Config: config, Output: &out})

		if err := run(t, r, "setup", "database", "--config", filepath.Join(t.TempDir(), "absent.toml")); err != nil {
			t.Fatal(err)
		}
		th.AssertFileExists(t, config.Database.Path)
	})
}
