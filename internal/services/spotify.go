// Spotify Web API implementation of [Player]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spotterm/spotterm/internal/models"
	"github.com/spotterm/spotterm/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// requestTimeout bounds every remote call so a stalled request cannot
	// wedge the session loop.
	requestTimeout = 10 * time.Second

	// requestRate keeps the 1 Hz poll plus user-triggered commands under
	// the provider's rate ceiling.
	requestRate = rate.Limit(10)

	defaultPageSize = 50
)

// APIError is a non-success status from the playback API.
type APIError struct {
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error: status %d", e.Status)
}

// SpotifyPlayer implements [Player] against the Spotify Web API.
type SpotifyPlayer struct {
	httpClient  *http.Client
	accessToken string
	baseURL     string
	limiter     *rate.Limiter
}

// SpotifyOpt customizes a [SpotifyPlayer].
type SpotifyOpt func(*SpotifyPlayer)

// WithHTTPClient overrides the default bounded-timeout client.
func WithHTTPClient(c *http.Client) SpotifyOpt {
	return func(s *SpotifyPlayer) { s.httpClient = c }
}

// WithBaseURL overrides the API base URL (tests).
func WithBaseURL(u string) SpotifyOpt {
	return func(s *SpotifyPlayer) { s.baseURL = u }
}

// NewSpotifyPlayer creates a player client wrapping the given bearer credential.
func NewSpotifyPlayer(accessToken string, opts ...SpotifyOpt) *SpotifyPlayer {
	s := &SpotifyPlayer{
		httpClient:  &http.Client{Timeout: requestTimeout},
		accessToken: accessToken,
		baseURL:     spotifyBaseURL,
		limiter:     rate.NewLimiter(requestRate, 1),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *SpotifyPlayer) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated request against the API.
//
// Returns the response status so callers can special-case documented
// statuses (204 on the player endpoint). Transport failures wrap
// [shared.ErrAPIRequest]; non-success statuses become [*APIError].
func (s *SpotifyPlayer) doRequest(ctx context.Context, method, endpoint string, body, result any) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to encode request body: %v", shared.ErrAPIRequest, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")
	if body == nil && (method == http.MethodPost || method == http.MethodPut) {
		req.Header.Set("Content-Length", "0")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &APIError{Status: resp.StatusCode}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return resp.StatusCode, nil
}

// CurrentPlayback retrieves the playback snapshot from /me/player.
//
// The endpoint returns 204 when no device is active; that maps to the
// zero-value snapshot (nothing playing) rather than an error.
func (s *SpotifyPlayer) CurrentPlayback(ctx context.Context) (models.PlayerState, error) {
	var state models.PlayerState
	status, err := s.doRequest(ctx, http.MethodGet, "/me/player", nil, &state)
	if err != nil {
		return models.PlayerState{}, err
	}
	if status == http.StatusNoContent {
		return models.PlayerState{}, nil
	}
	return state, nil
}

// SkipNext advances to the next track.
func (s *SpotifyPlayer) SkipNext(ctx context.Context) error {
	_, err := s.doRequest(ctx, http.MethodPost, "/me/player/next", nil, nil)
	return err
}

// SkipPrevious returns to the previous track.
func (s *SpotifyPlayer) SkipPrevious(ctx context.Context) error {
	_, err := s.doRequest(ctx, http.MethodPost, "/me/player/previous", nil, nil)
	return err
}

// paginatedPlaylists is a page of /me/playlists.
type paginatedPlaylists struct {
	Items []spotifyPlaylist `json:"items"`
	Next  *string           `json:"next"`
}

type spotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	URI         string `json:"uri"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// Playlists retrieves the user's playlists, following pagination until
// limit entries are collected (0 collects everything).
func (s *SpotifyPlayer) Playlists(ctx context.Context, limit int) ([]models.Playlist, error) {
	pageSize := defaultPageSize
	if limit > 0 && limit < pageSize {
		pageSize = limit
	}

	var playlists []models.Playlist
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", pageSize, offset)

		var page paginatedPlaylists
		if _, err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			playlists = append(playlists, models.Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				TrackCount:  sp.Tracks.Total,
				Public:      sp.Public,
				URI:         sp.URI,
			})
			if limit > 0 && len(playlists) >= limit {
				return playlists, nil
			}
		}

		if page.Next == nil {
			break
		}
		offset += pageSize
	}

	return playlists, nil
}

// StartPlaylist starts playback of the given playlist context URI on the
// active device.
func (s *SpotifyPlayer) StartPlaylist(ctx context.Context, contextURI string) error {
	body := struct {
		ContextURI string `json:"context_uri"`
	}{ContextURI: contextURI}

	status, err := s.doRequest(ctx, http.MethodPut, "/me/player/play", body, nil)
	if err != nil {
		if status == http.StatusNotFound {
			return fmt.Errorf("%w: %v", shared.ErrNoActiveDevice, err)
		}
		return err
	}
	return nil
}

// FetchArtwork retrieves a binary image resource. The URL is absolute
// (album art lives on the provider's CDN, not under the API base).
func (s *SpotifyPlayer) FetchArtwork(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return data, nil
}

var _ Player = (*SpotifyPlayer)(nil)
