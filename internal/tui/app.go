package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive TUI over svc. Cancelling ctx closes the program
// and is not reported as an error.
func Run(ctx context.Context, svc Service, timeout time.Duration) error {
	p := tea.NewProgram(NewModel(svc, timeout), tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil:
		return nil
	default:
		return fmt.Errorf("interactive session: %w", err)
	}
}
