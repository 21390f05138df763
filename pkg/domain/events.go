package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStage  EventType = "stage"
	EventCall   EventType = "call"
	EventSolved EventType = "solved"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id"`
}

// StageEvent reports a transition of the solve state machine.
// Cause is set when entering StageFallback or StageError.
type StageEvent struct {
	EventBase
	From  Stage `json:"from"`
	To    Stage `json:"to"`
	Cause error `json:"-"`
}

// Upstream clients reported in CallEvent.
const (
	ClientCompleter    = "completer"
	ClientSymbolicMath = "symbolic_math"
)

// CallEvent reports one call to an external collaborator.
type CallEvent struct {
	EventBase
	Client   string        `json:"client"`
	Purpose  string        `json:"purpose"` // analysis, fallback, explanation, compute, compute_retry
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// SolvedEvent reports the outcome of a whole solve.
type SolvedEvent struct {
	EventBase
	Success  bool          `json:"success"`
	Method   string        `json:"method,omitempty"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for pipeline observability.
type LifecycleHooks struct {
	OnStage  func(context.Context, *StageEvent)
	OnCall   func(context.Context, *CallEvent)
	OnSolved func(context.Context, *SolvedEvent)
}
