package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/diogo/gamemaster/internal/models"
)

// Scripted replays canned fragments. It backs demo mode and tests.
type Scripted struct {
	// Fragments are streamed in order when Reply is nil
	Fragments []string
	// Reply, when set, builds the fragments for each request
	Reply func(req Request) []string
	// Delay is waited before each fragment
	Delay time.Duration
	// Err is reported through the callback after ErrAfter fragments
	Err      error
	ErrAfter int
	// Hang blocks after the fragments until ctx is cancelled
	Hang bool

	mu       sync.Mutex
	requests []Request
	options  []Options
}

// NewScripted creates a provider that streams fragments
func NewScripted(fragments ...string) *Scripted {
	return &Scripted{Fragments: fragments}
}

// NewDemo creates an offline game master that narrates canned scenes word by word
func NewDemo() *Scripted {
	return &Scripted{
		Reply: demoReply,
		Delay: 40 * time.Millisecond,
	}
}

// Name returns the provider name
func (s *Scripted) Name() string { return "demo" }

// Model returns the model label
func (s *Scripted) Model() string { return "scripted" }

// GetCompletion streams the scripted fragments through opts.OnStreamResult
func (s *Scripted) GetCompletion(ctx context.Context, req Request, opts Options) error {
	s.mu.Lock()
	s.requests = append(s.requests, Request{Messages: models.CloneMessages(req.Messages)})
	s.options = append(s.options, opts)
	s.mu.Unlock()

	fragments := s.Fragments
	if s.Reply != nil {
		fragments = s.Reply(req)
	}

	for i, f := range fragments {
		if s.Err != nil && i == s.ErrAfter {
			emit(opts.OnStreamResult, nil, s.Err)
			return nil
		}
		if err := sleepCtx(ctx, s.Delay); err != nil {
			return err
		}
		emit(opts.OnStreamResult, fragment(f), nil)
	}

	if s.Err != nil && s.ErrAfter >= len(fragments) {
		emit(opts.OnStreamResult, nil, s.Err)
		return nil
	}

	if s.Hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// Requests returns the requests received so far
func (s *Scripted) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Options returns the options received so far
func (s *Scripted) Options() []Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Options, len(s.options))
	copy(out, s.options)
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var demoScenes = []string{
	"Day %d. The sun rises over a muddy road. One of your oxen is limping and a river crossing lies ahead. Supplies: 80 lbs of food, 2 spare wheels, 40 bullets. What do you do?",
	"Day %d. A trader waves you down and offers medicine for a rifle. Dark clouds gather to the west and your youngest traveler has a fever. What do you do?",
	"Day %d. You find the trail blocked by a fallen tree. Wolves howl in the distance as evening comes. What do you do?",
}

// demoReply picks a scene from the number of player turns and splits it into words
func demoReply(req Request) []string {
	turns := 0
	var last string
	for _, m := range req.Messages {
		if m.Role == models.RoleUser {
			turns++
			last = m.Content
		}
	}
	if turns == 0 {
		turns = 1
	}

	scene := fmt.Sprintf(demoScenes[(turns-1)%len(demoScenes)], turns)
	if turns > 1 && last != "" {
		scene = fmt.Sprintf("You decide to %q. ", strings.TrimSpace(last)) + scene
	}

	words := strings.SplitAfter(scene, " ")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
