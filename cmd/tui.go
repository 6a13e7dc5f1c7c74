package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spotterm/spotterm/internal/repositories"
	"github.com/spotterm/spotterm/internal/shared"
	"github.com/spotterm/spotterm/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI obtains a credential (the one blocking phase, which may run the full
// browser flow) and then hands control to the interactive session.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	player, err := r.playerFor(ctx)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/spotterm-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	// History recording is best-effort; a broken database disables it.
	var history *repositories.HistoryRepository
	if db, dbErr := r.database(); dbErr == nil {
		defer db.Close()
		history = repositories.NewHistoryRepository(db)
	} else {
		fileLogger.Warn("history recording disabled", "error", dbErr)
	}

	model := ui.NewModel(ctx, player, history, fileLogger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
