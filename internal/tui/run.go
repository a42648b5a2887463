package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run launches the results browser and blocks until the user quits or the
// context is canceled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Source == nil {
		return fmt.Errorf("data source is required")
	}
	if len(cfg.Predictions) == 0 {
		return fmt.Errorf("no predictions to browse")
	}

	program := tea.NewProgram(
		newModel(cfg),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
