// Package provider implements the streaming completion backends the game
// master talks to.
package provider

import (
	"context"

	"github.com/diogo/gamemaster/internal/models"
)

// Request is the ordered list of messages sent for completion
type Request struct {
	Messages []models.Message
}

// Result carries one streamed fragment of the reply
type Result struct {
	Message models.Message
}

// StreamFunc receives either a result or an error. It may be called any
// number of times, in emission order.
type StreamFunc func(result *Result, err error)

// Options are the sampling options and the stream callback
type Options struct {
	Temperature    float64
	MaxTokens      int
	OnStreamResult StreamFunc
}

// Provider is a streaming completion capability.
//
// GetCompletion blocks until the stream ends or ctx is cancelled. Fragments
// and stream errors are delivered through opts.OnStreamResult; the returned
// error covers failures to start the request.
type Provider interface {
	GetCompletion(ctx context.Context, req Request, opts Options) error
}

// Describer is implemented by providers that can name themselves for display
type Describer interface {
	Name() string
	Model() string
}

// emit calls fn when it is set
func emit(fn StreamFunc, result *Result, err error) {
	if fn != nil {
		fn(result, err)
	}
}

// fragment builds an assistant result for text
func fragment(text string) *Result {
	return &Result{Message: models.NewAssistantMessage(text)}
}

// splitSystem separates system entries from the dialogue, keeping order
func splitSystem(msgs []models.Message) (system []string, dialogue []models.Message) {
	for _, m := range msgs {
		if m.Role == models.RoleSystem {
			if m.Content != "" {
				system = append(system, m.Content)
			}
			continue
		}
		dialogue = append(dialogue, m)
	}
	return system, dialogue
}
