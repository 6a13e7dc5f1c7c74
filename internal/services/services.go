// package services defines interface Player for driving remote playback
package services

import (
	"context"

	"github.com/spotterm/spotterm/internal/models"
)

// Player defines the remote playback operations the session controller
// issues. Implementations wrap a bearer credential; they apply no retry
// policy of their own (retries, if any, are the caller's concern).
type Player interface {
	// CurrentPlayback fetches the playback snapshot. A "no content"
	// response yields the zero-value snapshot, not an error.
	CurrentPlayback(ctx context.Context) (models.PlayerState, error)

	// SkipNext advances playback to the next track.
	SkipNext(ctx context.Context) error

	// SkipPrevious returns playback to the previous track.
	SkipPrevious(ctx context.Context) error

	// Playlists retrieves the user's playlists, up to limit (0 for all).
	Playlists(ctx context.Context, limit int) ([]models.Playlist, error)

	// StartPlaylist starts playback of the playlist context URI.
	StartPlaylist(ctx context.Context, contextURI string) error

	// FetchArtwork retrieves a binary image resource by URL.
	FetchArtwork(ctx context.Context, url string) ([]byte, error)

	// Name returns the name of the service (e.g. "Spotify").
	Name() string
}
