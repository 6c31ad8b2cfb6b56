package http

import (
	"context"
	nethttp "net/http"
	"time"
)

// EventKind identifies a transition in the executor lifecycle
type EventKind string

const (
	// EventRequest is emitted right before an attempt is dispatched
	EventRequest EventKind = "request"
	// EventResponse is emitted when an attempt produced a response or a transport failure
	EventResponse EventKind = "response"
	// EventRetry is emitted when a retryable failure is about to be retried after Delay
	EventRetry EventKind = "retry"
	// EventSuccess is emitted once per Execute call that returns a body
	EventSuccess EventKind = "success"
	// EventFailure is emitted once per Execute call that returns an error
	EventFailure EventKind = "failure"
)

// OutcomeKind classifies the result of a single attempt
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRetryable
	OutcomeTerminal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one attempt. It only lives for the
// duration of one Execute call.
type Outcome struct {
	Kind    OutcomeKind
	Attempt int
	Body    any
	Err     error
}

// Event describes one lifecycle transition. Attempt is 0-based. Attempts is
// the number of attempts made and is only set on success and failure.
type Event struct {
	Kind       EventKind
	Method     string
	URL        string
	RequestID  string
	Attempt    int
	Attempts   int
	MaxRetries int
	Delay      time.Duration
	StatusCode int
	Elapsed    time.Duration
	Err        error
	Outcome    *Outcome

	Headers      nethttp.Header
	RequestBody  []byte
	ResponseBody []byte
}

// Observer receives lifecycle events. OnEvent is called synchronously from
// Execute and must not block for long.
type Observer interface {
	OnEvent(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(ctx context.Context, ev Event)

// OnEvent calls f(ctx, ev)
func (f ObserverFunc) OnEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}
