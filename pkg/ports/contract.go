package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mathsolver/pkg/domain"
)

// CompleterHarness builds the completers exercised by RunCompleterContract.
type CompleterHarness struct {
	// Replying returns a completer that answers every prompt with reply.
	Replying func(t *testing.T, reply string) Completer
	// Failing returns a completer whose provider rejects every call.
	Failing func(t *testing.T) Completer
}

// RunCompleterContract verifies that a Completer implementation adheres to the interface contract.
func RunCompleterContract(t *testing.T, h CompleterHarness) {
	ctx := context.Background()

	t.Run("Returns Reply", func(t *testing.T) {
		c := h.Replying(t, "OPERATION: simplify\nRESULT: 4")
		got, err := c.Generate(ctx, "Solve this math problem: 2+2")
		require.NoError(t, err)
		assert.Equal(t, "OPERATION: simplify\nRESULT: 4", got)
	})

	t.Run("Failure Is ProviderError", func(t *testing.T) {
		c := h.Failing(t)
		_, err := c.Generate(ctx, "anything")
		var pe *domain.ProviderError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("Cancelled Context Is ProviderError", func(t *testing.T) {
		c := h.Replying(t, "late")
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := c.Generate(cctx, "anything")
		var pe *domain.ProviderError
		assert.ErrorAs(t, err, &pe)
	})
}

// SymbolicMathHarness builds the clients exercised by RunSymbolicMathContract.
type SymbolicMathHarness struct {
	// Answering returns a client that answers every call with result.
	Answering func(t *testing.T, result string) SymbolicMath
	// Failing returns a client whose service rejects every call.
	Failing func(t *testing.T) SymbolicMath
}

// RunSymbolicMathContract verifies that a SymbolicMath implementation adheres to the interface contract.
func RunSymbolicMathContract(t *testing.T, h SymbolicMathHarness) {
	ctx := context.Background()

	t.Run("Returns Result", func(t *testing.T) {
		c := h.Answering(t, "2 x")
		got, err := c.Compute(ctx, "derive", "x^2")
		require.NoError(t, err)
		assert.Equal(t, "2 x", got.Result)
		assert.Equal(t, "derive", got.Operation)
	})

	t.Run("Failure Is ComputeError", func(t *testing.T) {
		c := h.Failing(t)
		_, err := c.Compute(ctx, "derive", "x^2")
		var ce *domain.ComputeError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "derive", ce.Operation)
		assert.Equal(t, "x^2", ce.Expression)
	})
}
