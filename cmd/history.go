package main

import (
	"context"
	"fmt"

	"github.com/spotterm/spotterm/internal/repositories"
	"github.com/spotterm/spotterm/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recent plays recorded by interactive sessions.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewHistoryRepository(db)

	entries, err := repo.Recent(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	if len(entries) == 0 {
		return r.writePlain("No plays recorded yet. Run 'spotterm tui' to start a session.\n")
	}

	r.writePlain("Recent plays:\n\n")
	for i, entry := range entries {
		r.writePlain("%d. %s — %s\n", i+1, entry.TrackName, entry.Artists)
		r.writePlain("   %s [%s]\n", entry.StartedAt.Local().Format("2006-01-02 15:04"), shared.FormatTrackTime(entry.DurationMS))
	}

	return nil
}

// HistoryClear deletes all recorded plays.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewHistoryRepository(db).Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	return r.writePlain("✓ Play history cleared\n")
}
