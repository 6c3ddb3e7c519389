package conversation

// Phase is the lifecycle state of the conversation
type Phase int

const (
	// PhaseIdle accepts a new submission
	PhaseIdle Phase = iota
	// PhaseSubmitting has sent a request and awaits the first fragment
	PhaseSubmitting
	// PhaseStreaming is receiving fragments of the current reply
	PhaseStreaming
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// EventKind identifies what an Event reports
type EventKind int

const (
	// EventChanged means the snapshot changed
	EventChanged EventKind = iota
	// EventError carries a provider, timeout or availability failure
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is delivered to observers after the controller state changed
type Event struct {
	Kind      EventKind
	RequestID string
	Err       error
}

// Observer receives events in emission order. It is called without the
// controller lock held, so it may read the controller or submit.
type Observer func(Event)
