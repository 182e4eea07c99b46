package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the irisd dashboard full screen and polls the server until
// the user quits.
func Run(cfg Config) error {
	model := NewModel(cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
