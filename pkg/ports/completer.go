package ports

import (
	"context"

	"github.com/aretw0/mathsolver/pkg/domain"
)

// Completer sends a prompt to a text-generation provider.
type Completer interface {
	// Generate returns the raw completion text.
	// Failures are reported as *domain.ProviderError.
	Generate(ctx context.Context, prompt string) (string, error)
}

// SymbolicMath applies an operation token to an expression on a computation service.
type SymbolicMath interface {
	// Compute returns the service's answer.
	// Failures are reported as *domain.ComputeError.
	Compute(ctx context.Context, operation, expression string) (domain.Computation, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f CompleterFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
