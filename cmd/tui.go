package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive playlist browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to a file before wiring services so nothing writes to
	// the terminal while the program is running.
	dataDir, err := shared.DataDir()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(filepath.Join(dataDir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	r.logger = shared.NewLogger(logFile)

	svc, err := r.openSpotify()
	if err != nil {
		return err
	}

	player, err := r.openPlayer()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, svc, player)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
