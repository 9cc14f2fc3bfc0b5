package ui

import (
	"context"
	"errors"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run drives m until the user quits or ctx is cancelled. Startup keys are
// applied before the first frame.
func Run(ctx context.Context, m *Model, startKeys []string, opts ...tea.ProgramOption) error {
	ApplyStartupKeys(m, startKeys)
	if m.engine.Quitting() {
		return nil
	}
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
