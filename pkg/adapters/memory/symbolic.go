package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/mathsolver/pkg/domain"
)

// Call records one Compute invocation.
type Call struct {
	Operation  string
	Expression string
}

// SymbolicMath implements ports.SymbolicMath from a script.
// Answers are consumed in order and the last one repeats. Safe for concurrent use.
type SymbolicMath struct {
	mu      sync.Mutex
	answers []Reply
	calls   []Call
}

// NewSymbolicMath creates a scripted computation client.
func NewSymbolicMath(answers ...Reply) *SymbolicMath {
	return &SymbolicMath{answers: answers}
}

// Compute returns the next scripted answer.
func (s *SymbolicMath) Compute(ctx context.Context, operation, expression string) (domain.Computation, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Operation: operation, Expression: expression})
	var r Reply
	switch {
	case len(s.answers) == 0:
		r = Fail("no scripted answer")
	case len(s.answers) == 1:
		r = s.answers[0]
	default:
		r = s.answers[0]
		s.answers = s.answers[1:]
	}
	s.mu.Unlock()

	if err := wait(ctx, r.Delay); err != nil {
		return domain.Computation{}, &domain.ComputeError{Operation: operation, Expression: expression, Message: "request aborted", Err: err}
	}
	if r.Err != nil {
		var ce *domain.ComputeError
		if errors.As(r.Err, &ce) {
			return domain.Computation{}, r.Err
		}
		return domain.Computation{}, &domain.ComputeError{Operation: operation, Expression: expression, Message: r.Err.Error()}
	}
	return domain.Computation{Operation: operation, Expression: expression, Result: r.Text}, nil
}

// Calls returns every invocation received so far.
func (s *SymbolicMath) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}
