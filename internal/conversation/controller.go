// Package conversation holds the game master conversation state: the
// transcript, the pending input and the busy flag, and folds streamed
// provider fragments into the transcript.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/diogo/gamemaster/internal/errors"
	"github.com/diogo/gamemaster/internal/models"
	"github.com/diogo/gamemaster/internal/provider"
)

// DefaultStallTimeout bounds the wait for the next fragment of a reply
const DefaultStallTimeout = 90 * time.Second

// Snapshot is a read-only view of the conversation.
// Messages never include the persona message.
type Snapshot struct {
	Messages     []models.Message
	PendingInput string
	Busy         bool
	Phase        Phase
	Err          error
}

// request tracks one provider call and the assistant message it writes to
type request struct {
	id     string
	reply  int // transcript index of the assistant message, -1 before the first fragment
	done   bool
	seen   bool
	last   time.Time
	cancel context.CancelFunc
	timer  *time.Timer
}

// Controller owns the conversation and drives the completion provider
type Controller struct {
	provider     provider.Provider
	logger       zerolog.Logger
	temperature  float64
	maxTokens    int
	stallTimeout time.Duration
	observers    []Observer

	mu         sync.Mutex
	transcript []models.Message
	pending    string
	busy       bool
	phase      Phase
	lastErr    error
	current    *request
	inflight   map[string]*request
	queue      []Event
	flushing   bool

	wg sync.WaitGroup
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the sink for provider failures
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithObserver registers fn for state change and error events
func WithObserver(fn Observer) Option {
	return func(c *Controller) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// WithStallTimeout sets how long a request may go without a fragment.
// Zero waits forever.
func WithStallTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d < 0 {
			d = 0
		}
		c.stallTimeout = d
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) Option {
	return func(c *Controller) {
		c.temperature = t
	}
}

// WithMaxTokens sets the reply length limit
func WithMaxTokens(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// New creates a controller whose transcript starts with persona.
// A nil provider is allowed: submissions then fail as unavailable.
func New(persona models.Message, p provider.Provider, opts ...Option) *Controller {
	c := &Controller{
		provider:     p,
		logger:       zerolog.Nop(),
		temperature:  models.DefaultTemperature,
		maxTokens:    models.DefaultMaxTokens,
		stallTimeout: DefaultStallTimeout,
		transcript:   []models.Message{persona},
		inflight:     make(map[string]*request),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether a completion provider is configured
func (c *Controller) Available() bool {
	return c.provider != nil
}

// SetPendingInput records the text currently typed by the player
func (c *Controller) SetPendingInput(text string) {
	c.mu.Lock()
	if c.pending == text {
		c.mu.Unlock()
		return
	}
	c.pending = text
	c.enqueue(Event{Kind: EventChanged})
	c.mu.Unlock()
	c.flush()
}

// StartGame submits the opening message
func (c *Controller) StartGame(ctx context.Context) bool {
	return c.Submit(ctx, models.StartGamePrompt)
}

// Submit appends text as a user message and asks the provider for a reply.
// It returns false without doing anything when text is empty or a reply is
// still awaited. It never waits for the reply.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	c.mu.Lock()
	if text == "" || c.busy {
		c.mu.Unlock()
		return false
	}

	c.transcript = append(c.transcript, models.NewUserMessage(text))
	c.pending = ""
	c.busy = true
	c.phase = PhaseSubmitting
	c.lastErr = nil

	// The generic prompt goes ahead of the persona message, so every request
	// carries two system entries.
	msgs := make([]models.Message, 0, len(c.transcript)+1)
	msgs = append(msgs, models.NewSystemMessage(models.GenericSystemPrompt))
	msgs = append(msgs, c.transcript...)

	id := uuid.NewString()

	if c.provider == nil {
		err := apperrors.NewProviderUnavailableError("", "no completion provider configured")
		c.busy = false
		c.phase = PhaseIdle
		c.lastErr = err
		c.logger.Error().Err(err).Str("request_id", id).Msg("cannot submit")
		c.enqueue(Event{Kind: EventChanged, RequestID: id})
		c.enqueue(Event{Kind: EventError, RequestID: id, Err: err})
		c.mu.Unlock()
		c.flush()
		return true
	}

	reqCtx, cancel := context.WithCancel(ctx)
	r := &request{id: id, reply: -1, last: time.Now(), cancel: cancel}
	if c.stallTimeout > 0 {
		r.timer = time.AfterFunc(c.stallTimeout, func() { c.onStall(r) })
	}
	c.current = r
	c.inflight[id] = r
	c.wg.Add(1)

	name, model := provider.Describe(c.provider)
	c.logger.Debug().
		Str("request_id", id).
		Str("provider", name).
		Str("model", model).
		Int("messages", len(msgs)).
		Msg("completion requested")

	c.enqueue(Event{Kind: EventChanged, RequestID: id})
	c.mu.Unlock()
	c.flush()

	go c.run(reqCtx, r, msgs)
	return true
}

func (c *Controller) run(ctx context.Context, r *request, msgs []models.Message) {
	defer c.wg.Done()
	defer r.cancel()

	err := c.provider.GetCompletion(ctx, provider.Request{Messages: msgs}, provider.Options{
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		OnStreamResult: func(result *provider.Result, err error) {
			c.onStream(r, result, err)
		},
	})
	c.finish(r, err)
}

// onStream folds one callback of r into the transcript
func (c *Controller) onStream(r *request, result *provider.Result, err error) {
	c.mu.Lock()
	if r.done {
		c.mu.Unlock()
		return
	}
	r.seen = true
	r.last = time.Now()

	if err != nil {
		if r.timer != nil {
			r.timer.Stop()
		}
		cur := c.current == r
		if cur {
			c.busy = false
			c.phase = PhaseIdle
		}
		c.logger.Error().Err(err).Str("request_id", r.id).Bool("current", cur).Msg("completion failed")
		c.report(r, cur, err)
		c.mu.Unlock()
		c.flush()
		return
	}

	var text string
	if result != nil {
		text = result.Message.Content
	}
	if r.reply < 0 {
		c.transcript = append(c.transcript, models.NewAssistantMessage(text))
		r.reply = len(c.transcript) - 1
	} else {
		c.transcript[r.reply].Content += text
	}

	if c.current == r {
		c.busy = false
		c.phase = PhaseStreaming
	}
	if r.timer != nil {
		r.timer.Reset(c.stallTimeout)
	}

	c.enqueue(Event{Kind: EventChanged, RequestID: r.id})
	c.mu.Unlock()
	c.flush()
}

// finish closes r once the provider call returned
func (c *Controller) finish(r *request, err error) {
	c.mu.Lock()
	if r.done {
		c.mu.Unlock()
		return
	}
	c.close(r)

	cur := c.current == r
	if cur {
		c.current = nil
	}

	switch {
	case err != nil && !errors.Is(err, context.Canceled):
		if !apperrors.IsCompletion(err) {
			name, _ := provider.Describe(c.provider)
			err = apperrors.NewCompletionError(name, err)
		}
		if cur {
			c.busy = false
			c.phase = PhaseIdle
		}
		c.logger.Error().Err(err).Str("request_id", r.id).Bool("current", cur).Msg("completion request failed")
		c.report(r, cur, err)
	default:
		if err != nil {
			c.logger.Info().Str("request_id", r.id).Msg("completion cancelled")
		} else {
			c.logger.Debug().Str("request_id", r.id).Bool("replied", r.reply >= 0).Msg("completion finished")
		}
		if cur {
			c.busy = false
			c.phase = PhaseIdle
		}
		c.enqueue(Event{Kind: EventChanged, RequestID: r.id})
	}

	c.mu.Unlock()
	c.flush()
}

// onStall abandons r when it went quiet for longer than the stall timeout
func (c *Controller) onStall(r *request) {
	c.mu.Lock()
	if r.done {
		c.mu.Unlock()
		return
	}
	if idle := time.Since(r.last); idle < c.stallTimeout {
		// A fragment raced the timer
		r.timer.Reset(c.stallTimeout - idle)
		c.mu.Unlock()
		return
	}

	c.close(r)
	r.cancel()
	cur := c.current == r
	if cur {
		c.current = nil
		c.busy = false
		c.phase = PhaseIdle
	}

	err := apperrors.NewTimeoutError(fmt.Sprintf("no response for %s", c.stallTimeout))
	c.logger.Warn().Err(err).Str("request_id", r.id).Bool("replied", r.reply >= 0).Bool("current", cur).Msg("completion abandoned")
	c.report(r, cur, err)
	c.mu.Unlock()
	c.flush()
}

// report surfaces err of r to observers. Errors of a superseded request are
// only logged so they never show against the request on screen. Callers
// hold c.mu.
func (c *Controller) report(r *request, current bool, err error) {
	c.enqueue(Event{Kind: EventChanged, RequestID: r.id})
	if !current {
		return
	}
	c.lastErr = err
	c.enqueue(Event{Kind: EventError, RequestID: r.id, Err: err})
}

// close marks r done. Callers hold c.mu.
func (c *Controller) close(r *request) {
	r.done = true
	if r.timer != nil {
		r.timer.Stop()
	}
	delete(c.inflight, r.id)
}

// Reset abandons in-flight requests and starts the transcript over from
// the persona message.
func (c *Controller) Reset() {
	c.mu.Lock()
	for _, r := range c.inflight {
		c.close(r)
		r.cancel()
	}
	c.transcript = c.transcript[:1:1]
	c.pending = ""
	c.busy = false
	c.phase = PhaseIdle
	c.lastErr = nil
	c.current = nil
	c.logger.Info().Msg("conversation reset")
	c.enqueue(Event{Kind: EventChanged})
	c.mu.Unlock()
	c.flush()
}

// Close abandons in-flight requests and waits for provider calls to return
func (c *Controller) Close() {
	c.mu.Lock()
	for _, r := range c.inflight {
		c.close(r)
		r.cancel()
	}
	if c.current != nil {
		c.current = nil
		c.busy = false
		c.phase = PhaseIdle
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Wait blocks until every provider call started so far has returned
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Busy reports whether a submission is awaiting its first fragment
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Phase returns the lifecycle state
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// PendingInput returns the text currently typed by the player
func (c *Controller) PendingInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Transcript returns the whole transcript, persona message first
func (c *Controller) Transcript() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CloneMessages(c.transcript)
}

// Snapshot returns the displayable state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Messages:     models.CloneMessages(c.transcript[1:]),
		PendingInput: c.pending,
		Busy:         c.busy,
		Phase:        c.phase,
		Err:          c.lastErr,
	}
}

// enqueue adds ev for delivery. Callers hold c.mu.
func (c *Controller) enqueue(ev Event) {
	if len(c.observers) == 0 {
		return
	}
	c.queue = append(c.queue, ev)
}

// flush delivers queued events in order. Only one goroutine delivers at a
// time; others leave their events to it.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.flushing {
		c.mu.Unlock()
		return
	}
	c.flushing = true
	for len(c.queue) > 0 {
		batch := c.queue
		c.queue = nil
		c.mu.Unlock()
		for _, ev := range batch {
			for _, fn := range c.observers {
				fn(ev)
			}
		}
		c.mu.Lock()
	}
	c.flushing = false
	c.mu.Unlock()
}
