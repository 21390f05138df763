package domain

import (
	"errors"
	"fmt"
)

// ErrMissingProblem is returned when a request carries no problem statement.
var ErrMissingProblem = errors.New("Problem statement is required")

// ProviderError wraps completion provider failures (network, quota, invalid key, timeout).
// It is recoverable: the orchestrator routes it to the fallback branch.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ValidationError flags a parsed result that is inconsistent with the requested operation.
type ValidationError struct {
	Operation string
	Result    string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("inconsistent %s result %q: %s", e.Operation, e.Result, e.Reason)
}

// ComputeError wraps symbolic math service failures.
type ComputeError struct {
	Operation  string
	Expression string
	Message    string
	Err        error
}

func (e *ComputeError) Error() string {
	msg := fmt.Sprintf("compute %s(%s): %s", e.Operation, e.Expression, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ComputeError) Unwrap() error { return e.Err }

// SolveFailedError is returned when both the primary and the fallback paths failed.
// Error reports the original failure; Details reports why the fallback failed too.
type SolveFailedError struct {
	Cause    error
	Fallback error
}

func (e *SolveFailedError) Error() string {
	if e.Cause == nil {
		return "solve failed"
	}
	return e.Cause.Error()
}

// Details returns a human readable description of the fallback failure.
func (e *SolveFailedError) Details() string {
	if e.Fallback == nil {
		return ""
	}
	return e.Fallback.Error()
}

func (e *SolveFailedError) Unwrap() []error {
	return []error{e.Cause, e.Fallback}
}
