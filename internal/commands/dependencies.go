package commands

import (
	"context"
	"os"

	"golang.org/x/term"

	"github.com/diogo/gamemaster/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	Run(ctx context.Context, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// TUI is the terminal user interface.
	TUI TUIInterface

	// IsTerminal reports whether stdout is an interactive terminal.
	IsTerminal func() bool
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) Run(ctx context.Context, opts tui.Options) error {
	return tui.Run(ctx, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:        &DefaultTUI{},
		IsTerminal: isStdoutTTY,
	}
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
