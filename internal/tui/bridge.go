package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/gamemaster/internal/conversation"
)

// controllerMsg tells the model to refresh from the controller
type controllerMsg struct {
	event conversation.Event
}

// Bridge forwards controller events into the bubbletea program
type Bridge struct {
	ch chan conversation.Event
}

// NewBridge creates a bridge with room for a burst of events
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan conversation.Event, 64)}
}

// Observe is registered as the controller observer. It never blocks: when
// the buffer is full an unread event is pending, and reading it refreshes
// the whole snapshot anyway.
func (b *Bridge) Observe(ev conversation.Event) {
	select {
	case b.ch <- ev:
	default:
	}
}

// wait returns a command that delivers the next controller event
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		return controllerMsg{event: <-b.ch}
	}
}
