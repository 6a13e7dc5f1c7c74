package main

import (
	"context"
	"fmt"

	"github.com/spotterm/spotterm/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlayerStatus fetches and prints the current playback snapshot.
func (r *Runner) PlayerStatus(ctx context.Context, cmd *cli.Command) error {
	player, err := r.playerFor(ctx)
	if err != nil {
		return err
	}

	state, err := player.CurrentPlayback(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(state, cmd.Bool("pretty"))
	}

	if state.Item == nil {
		return r.writePlain("Nothing playing.\n")
	}

	status := "paused"
	if state.IsPlaying {
		status = "playing"
	}

	r.writePlain("%s — %s\n", state.Item.Name, state.Item.ArtistNames())
	r.writePlain("%s / %s (%s)\n",
		shared.FormatTrackTime(state.ProgressMS),
		shared.FormatTrackTime(state.Item.DurationMS),
		status,
	)

	return nil
}

// PlayerNext skips to the next track.
func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	player, err := r.playerFor(ctx)
	if err != nil {
		return err
	}

	if err := player.SkipNext(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ Skipped to next track\n")
}

// PlayerPrev returns to the previous track.
func (r *Runner) PlayerPrev(ctx context.Context, cmd *cli.Command) error {
	player, err := r.playerFor(ctx)
	if err != nil {
		return err
	}

	if err := player.SkipPrevious(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ Returned to previous track\n")
}

// PlayerPlay starts playback of the playlist named by --id.
func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	if playlistID == "" {
		return fmt.Errorf("%w: --id flag is required", shared.ErrMissingArgument)
	}

	player, err := r.playerFor(ctx)
	if err != nil {
		return err
	}

	uri := fmt.Sprintf("spotify:playlist:%s", playlistID)
	if err := player.StartPlaylist(ctx, uri); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ Started playlist %s\n", playlistID)
}

// Playlists lists the user's playlists with an optional limit.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))

	player, err := r.playerFor(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("listing playlists with limit %v", limit)

	playlists, err := player.Playlists(ctx, limit)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		r.writePlain("\n")
	}

	return nil
}
