package mathsolver

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/mathsolver/internal/runtime"
	"github.com/aretw0/mathsolver/pkg/catalog"
	"github.com/aretw0/mathsolver/pkg/domain"
	"github.com/aretw0/mathsolver/pkg/ports"
)

// Version is the release of the engine and its surfaces.
const Version = "0.4.0"

// Engine is the high-level entry point of the library.
// It wraps the internal orchestrator and exposes the operation catalog.
type Engine struct {
	orchestrator *runtime.Orchestrator
	catalog      *catalog.Catalog
	symbolic     ports.SymbolicMath
	useSymbolic  bool
	callTimeout  time.Duration
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSymbolicMath wires a symbolic math client. When enabled is false the computing
// stage only runs for requests that ask for it.
func WithSymbolicMath(client ports.SymbolicMath, enabled bool) Option {
	return func(e *Engine) {
		e.symbolic = client
		e.useSymbolic = enabled
	}
}

// WithCatalog replaces the embedded operation catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithCallTimeout bounds every external call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.callTimeout = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine around a completion client.
func New(completer ports.Completer, opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.catalog == nil {
		eng.catalog = catalog.Default()
	}
	// Keep the library silent unless the host asks for logs.
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	runtimeOpts := []runtime.Option{
		runtime.WithCatalog(eng.catalog),
		runtime.WithCallTimeout(eng.callTimeout),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	if eng.symbolic != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithSymbolicMath(eng.symbolic, eng.useSymbolic))
	}
	eng.orchestrator = runtime.NewOrchestrator(completer, runtimeOpts...)
	return eng
}

// Solve runs the pipeline for a single problem.
func (e *Engine) Solve(ctx context.Context, problem string) (*domain.SolveResponse, error) {
	return e.orchestrator.Solve(ctx, domain.ProblemRequest{Problem: problem})
}

// SolveRequest runs the pipeline honoring the request's preferred method.
func (e *Engine) SolveRequest(ctx context.Context, req domain.ProblemRequest) (*domain.SolveResponse, error) {
	return e.orchestrator.Solve(ctx, req)
}

// SymbolicEnabled reports whether the computing stage runs by default.
func (e *Engine) SymbolicEnabled() bool {
	return e.orchestrator.SymbolicEnabled()
}

// Catalog returns the operation catalog used to map operations to tokens.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}
