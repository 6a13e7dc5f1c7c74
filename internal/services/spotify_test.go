package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spotterm/spotterm/internal/shared"
)

// recordedRequest captures what the client actually sent.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

func newTestPlayer(handler http.HandlerFunc) (*SpotifyPlayer, *httptest.Server) {
	srv := httptest.NewServer(handler)
	player := NewSpotifyPlayer("test-token", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	return player, srv
}

func TestCurrentPlayback(t *testing.T) {
	ctx := context.Background()

	t.Run("Active playback", func(t *testing.T) {
		var got recordedRequest
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			got = recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"is_playing": true,
				"progress_ms": 4200,
				"item": {
					"id": "track-1",
					"name": "Song",
					"duration_ms": 180000,
					"artists": [{"name": "Artist A"}, {"name": "Artist B"}],
					"album": {"name": "Album", "images": [{"url": "https://img.example/cover.jpg", "height": 300, "width": 300}]}
				}
			}`)
		})
		defer srv.Close()

		state, err := player.CurrentPlayback(ctx)
		if err != nil {
			t.Fatalf("expected playback state, got %v", err)
		}

		if got.Method != http.MethodGet || got.Path != "/me/player" {
			t.Errorf("expected GET /me/player, got %s %s", got.Method, got.Path)
		}
		if got.Auth != "Bearer test-token" {
			t.Errorf("expected bearer credential, got %q", got.Auth)
		}
		if !state.IsPlaying || state.ProgressMS != 4200 {
			t.Errorf("unexpected state: %+v", state)
		}
		if state.Item == nil || state.Item.Name != "Song" {
			t.Fatalf("expected track item, got %+v", state.Item)
		}
		if names := state.Item.ArtistNames(); names != "Artist A, Artist B" {
			t.Errorf("expected joined artist names, got %q", names)
		}
		if url := state.Item.ArtworkURL(); url != "https://img.example/cover.jpg" {
			t.Errorf("expected artwork URL, got %q", url)
		}
	})

	t.Run("No active device returns empty snapshot", func(t *testing.T) {
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		defer srv.Close()

		state, err := player.CurrentPlayback(ctx)
		if err != nil {
			t.Fatalf("expected no error for 204, got %v", err)
		}
		if state.IsPlaying || state.Item != nil || state.ProgressMS != 0 {
			t.Errorf("expected zero-value snapshot, got %+v", state)
		}
	})

	t.Run("API error carries status", func(t *testing.T) {
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		defer srv.Close()

		_, err := player.CurrentPlayback(ctx)

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.Status != http.StatusTooManyRequests {
			t.Errorf("expected status 429, got %d", apiErr.Status)
		}
	})

	t.Run("Transport failure", func(t *testing.T) {
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {})
		srv.Close() // connection refused from here on

		_, err := player.CurrentPlayback(ctx)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestSkip(t *testing.T) {
	ctx := context.Background()

	t.Run("Next", func(t *testing.T) {
		var got recordedRequest
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			got = recordedRequest{Method: r.Method, Path: r.URL.Path}
			w.WriteHeader(http.StatusNoContent)
		})
		defer srv.Close()

		if err := player.SkipNext(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Method != http.MethodPost || got.Path != "/me/player/next" {
			t.Errorf("expected POST /me/player/next, got %s %s", got.Method, got.Path)
		}
	})

	t.Run("Previous", func(t *testing.T) {
		var got recordedRequest
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			got = recordedRequest{Method: r.Method, Path: r.URL.Path}
			w.WriteHeader(http.StatusNoContent)
		})
		defer srv.Close()

		if err := player.SkipPrevious(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Method != http.MethodPost || got.Path != "/me/player/previous" {
			t.Errorf("expected POST /me/player/previous, got %s %s", got.Method, got.Path)
		}
	})

	t.Run("Failure surfaces status", func(t *testing.T) {
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		defer srv.Close()

		err := player.SkipNext(ctx)

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
			t.Errorf("expected *APIError with status 403, got %v", err)
		}
	})
}

func TestPlaylists(t *testing.T) {
	ctx := context.Background()

	page := func(names []string, next string) string {
		items := make([]map[string]any, len(names))
		for i, name := range names {
			items[i] = map[string]any{
				"id":     name,
				"name":   name,
				"uri":    "spotify:playlist:" + name,
				"tracks": map[string]any{"total": 10},
			}
		}
		payload := map[string]any{"items": items}
		if next != "" {
			payload["next"] = next
		}
		data, _ := json.Marshal(payload)
		return string(data)
	}

	t.Run("Follows pagination", func(t *testing.T) {
		var offsets []string
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			offsets = append(offsets, r.URL.Query().Get("offset"))
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("offset") == "0" {
				fmt.Fprint(w, page([]string{"one", "two"}, "https://api.example/next"))
				return
			}
			fmt.Fprint(w, page([]string{"three"}, ""))
		})
		defer srv.Close()

		playlists, err := player.Playlists(ctx, 0)
		if err != nil {
			t.Fatalf("expected playlists, got %v", err)
		}
		if len(playlists) != 3 {
			t.Fatalf("expected 3 playlists across pages, got %d", len(playlists))
		}
		if playlists[2].Name != "three" {
			t.Errorf("expected pages in order, got %+v", playlists)
		}
		if len(offsets) != 2 {
			t.Errorf("expected 2 page requests, got %v", offsets)
		}
	})

	t.Run("Stops at limit", func(t *testing.T) {
		var requests int
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, page([]string{"one", "two", "three"}, "https://api.example/next"))
		})
		defer srv.Close()

		playlists, err := player.Playlists(ctx, 2)
		if err != nil {
			t.Fatalf("expected playlists, got %v", err)
		}
		if len(playlists) != 2 {
			t.Errorf("expected limit to cap results at 2, got %d", len(playlists))
		}
		if requests != 1 {
			t.Errorf("expected a single page request, got %d", requests)
		}
	})

	t.Run("Propagates API error", func(t *testing.T) {
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		defer srv.Close()

		_, err := player.Playlists(ctx, 0)

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
			t.Errorf("expected *APIError with status 401, got %v", err)
		}
	})
}

func TestStartPlaylist(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends context URI", func(t *testing.T) {
		var got recordedRequest
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			got = recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body}
			w.WriteHeader(http.StatusNoContent)
		})
		defer srv.Close()

		if err := player.StartPlaylist(ctx, "spotify:playlist:abc"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Method != http.MethodPut || got.Path != "/me/player/play" {
			t.Errorf("expected PUT /me/player/play, got %s %s", got.Method, got.Path)
		}
		if !bytes.Contains(got.Body, []byte(`"context_uri":"spotify:playlist:abc"`)) {
			t.Errorf("expected context_uri in body, got %s", got.Body)
		}
	})

	t.Run("No active device", func(t *testing.T) {
		player, srv := newTestPlayer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		defer srv.Close()

		err := player.StartPlaylist(ctx, "spotify:playlist:abc")
		if !errors.Is(err, shared.ErrNoActiveDevice) {
			t.Errorf("expected ErrNoActiveDevice, got %v", err)
		}
	})
}

func TestFetchArtwork(t *testing.T) {
	ctx := context.Background()

	t.Run("Downloads image bytes", func(t *testing.T) {
		image := []byte{0xFF, 0xD8, 0xFF, 0xE0}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(image)
		}))
		defer srv.Close()

		player := NewSpotifyPlayer("test-token", WithHTTPClient(srv.Client()))

		data, err := player.FetchArtwork(ctx, srv.URL+"/cover.jpg")
		if err != nil {
			t.Fatalf("expected artwork, got %v", err)
		}
		if !bytes.Equal(data, image) {
			t.Errorf("expected image bytes, got %v", data)
		}
	})

	t.Run("Missing image", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		player := NewSpotifyPlayer("test-token", WithHTTPClient(srv.Client()))

		_, err := player.FetchArtwork(ctx, srv.URL+"/cover.jpg")

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
			t.Errorf("expected *APIError with status 404, got %v", err)
		}
	})
}
