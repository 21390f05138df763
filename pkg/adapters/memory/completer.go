// Package memory provides in-memory, scripted implementations of the ports.
// They back the test suites and the offline demo mode.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/mathsolver/pkg/domain"
)

// Reply is one scripted answer.
type Reply struct {
	Text  string
	Err   error
	Delay time.Duration // Honors context cancellation while waiting
}

// Text scripts a successful reply.
func Text(s string) Reply { return Reply{Text: s} }

// Fail scripts a provider failure.
func Fail(msg string) Reply { return Reply{Err: errors.New(msg)} }

// Completer implements ports.Completer from a script.
// Replies are consumed in order and the last one repeats. Safe for concurrent use.
type Completer struct {
	mu      sync.Mutex
	replies []Reply
	prompts []string
}

// NewCompleter creates a scripted completer. With no replies every call fails.
func NewCompleter(replies ...Reply) *Completer {
	return &Completer{replies: replies}
}

// Generate returns the next scripted reply.
func (c *Completer) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	var r Reply
	switch {
	case len(c.replies) == 0:
		r = Fail("no scripted reply")
	case len(c.replies) == 1:
		r = c.replies[0]
	default:
		r = c.replies[0]
		c.replies = c.replies[1:]
	}
	c.mu.Unlock()

	if err := wait(ctx, r.Delay); err != nil {
		return "", &domain.ProviderError{Provider: "memory", Message: "request aborted", Err: err}
	}
	if r.Err != nil {
		var pe *domain.ProviderError
		if errors.As(r.Err, &pe) {
			return "", r.Err
		}
		return "", &domain.ProviderError{Provider: "memory", Message: r.Err.Error()}
	}
	return r.Text, nil
}

// Prompts returns every prompt received so far.
func (c *Completer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
