// Package runtime executes the solve pipeline state machine:
//
//	received -> analyzing -> (computing) -> explaining -> completed
//	                \-> fallback -> completed
//	any stage -> error
//
// An Orchestrator holds no per-request state. Every Solve builds its own run, so a single
// Orchestrator is safe for concurrent use.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/mathsolver/pkg/catalog"
	"github.com/aretw0/mathsolver/pkg/domain"
	"github.com/aretw0/mathsolver/pkg/parser"
	"github.com/aretw0/mathsolver/pkg/ports"
	"github.com/aretw0/mathsolver/pkg/prompt"
)

// DefaultCallTimeout bounds every external call.
const DefaultCallTimeout = 8 * time.Second

// Preferred methods accepted on a request.
const (
	PreferAI     = "ai"
	PreferNewton = "newton"
)

// Orchestrator sequences prompt building, completion, parsing, computation and explanation.
type Orchestrator struct {
	completer   ports.Completer
	symbolic    ports.SymbolicMath
	useSymbolic bool
	catalog     *catalog.Catalog
	callTimeout time.Duration
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	newID       func() string
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithSymbolicMath wires a computation client. enabled selects whether the computing stage
// runs by default; a request can still force it with PreferNewton.
func WithSymbolicMath(client ports.SymbolicMath, enabled bool) Option {
	return func(o *Orchestrator) {
		o.symbolic = client
		o.useSymbolic = enabled
	}
}

// WithCatalog replaces the default operation catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *Orchestrator) {
		o.catalog = c
	}
}

// WithCallTimeout bounds each external call. Non-positive values keep the default.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithIDGenerator replaces the request ID source.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newID = fn
	}
}

// NewOrchestrator creates an Orchestrator around a completion client.
func NewOrchestrator(completer ports.Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		completer:   completer,
		catalog:     catalog.Default(),
		callTimeout: DefaultCallTimeout,
		logger:      slog.Default(),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SymbolicEnabled reports whether the computing stage runs by default.
func (o *Orchestrator) SymbolicEnabled() bool {
	return o.symbolic != nil && o.useSymbolic
}

// Solve runs the pipeline for one problem.
// It returns domain.ErrMissingProblem for an empty problem and *domain.SolveFailedError
// when both the structured and the fallback paths failed. Any other failure is absorbed.
func (o *Orchestrator) Solve(ctx context.Context, req domain.ProblemRequest) (*domain.SolveResponse, error) {
	r := &run{
		o:     o,
		id:    o.newID(),
		stage: domain.StageReceived,
		start: time.Now(),
	}

	problem := strings.TrimSpace(req.Problem)
	if problem == "" {
		r.transition(ctx, domain.StageError, domain.ErrMissingProblem)
		r.solved(ctx, nil)
		return nil, domain.ErrMissingProblem
	}

	r.transition(ctx, domain.StageAnalyzing, nil)
	raw, err := r.complete(ctx, "analysis", prompt.Analysis(problem))
	var analysis domain.ParsedAnalysis
	if err == nil {
		analysis = parser.ParseStructuredCompletion(raw, problem)
		err = parser.Validate(analysis, o.catalog)
	}
	if err != nil {
		return r.fallback(ctx, problem, err)
	}

	operation := o.catalog.Canonicalize(analysis.Operation)
	if operation == "" {
		operation = analysis.Operation
	}
	resp := &domain.SolveResponse{
		Success:         true,
		RequestID:       r.id,
		OriginalProblem: problem,
		Analysis: domain.Analysis{
			Operation:  operation,
			Expression: analysis.Expression,
			Context:    fmt.Sprintf("Interpreted as %s of %s", operation, analysis.Expression),
		},
		Calculation: domain.Calculation{
			Method:    domain.MethodAI,
			Result:    analysis.Result,
			Operation: operation,
			Steps:     analysis.Steps,
		},
		RawModelOutput: raw,
	}

	if o.shouldCompute(req.PreferredMethod) {
		r.transition(ctx, domain.StageComputing, nil)
		token := o.catalog.TokenFor(analysis.Operation)
		comp, err := r.computeWithRetry(ctx, token, analysis.Expression)
		if err != nil {
			o.logger.Warn("Symbolic math unavailable, keeping model result",
				"request_id", r.id, "operation", token, "error", err)
			resp.Warnings = append(resp.Warnings, "symbolic math unavailable: "+firstLine(err))
		} else {
			resp.Calculation.Method = domain.MethodNewton
			resp.Calculation.Result = comp.Result
			resp.Calculation.Operation = comp.Operation
			analysis.Result = comp.Result
		}
	}

	r.transition(ctx, domain.StageExplaining, nil)
	explanation, err := r.complete(ctx, "explanation", prompt.Explanation(problem, analysis))
	if err != nil {
		// Explanation is best effort: the result is already known.
		o.logger.Warn("Explanation failed, returning without it", "request_id", r.id, "error", err)
		resp.Warnings = append(resp.Warnings, "explanation unavailable: "+err.Error())
	} else {
		resp.Explanation = explanation
	}

	r.transition(ctx, domain.StageCompleted, nil)
	r.solved(ctx, resp)
	return resp, nil
}

func (o *Orchestrator) shouldCompute(preferred string) bool {
	if o.symbolic == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(preferred)) {
	case PreferAI:
		return false
	case PreferNewton:
		return true
	default:
		return o.useSymbolic
	}
}

// run carries the state of a single Solve.
type run struct {
	o     *Orchestrator
	id    string
	stage domain.Stage
	start time.Time
}

func (r *run) fallback(ctx context.Context, problem string, cause error) (*domain.SolveResponse, error) {
	r.o.logger.Warn("Structured analysis failed, using fallback prompt", "request_id", r.id, "error", cause)
	r.transition(ctx, domain.StageFallback, cause)

	raw, err := r.complete(ctx, "fallback", prompt.Fallback(problem))
	if err != nil {
		failed := &domain.SolveFailedError{Cause: cause, Fallback: err}
		r.o.logger.Error("Solve failed", "request_id", r.id, "error", cause, "fallback_error", err)
		r.transition(ctx, domain.StageError, failed)
		r.solved(ctx, nil)
		return nil, failed
	}

	resp := &domain.SolveResponse{
		Success:         true,
		RequestID:       r.id,
		OriginalProblem: problem,
		Analysis: domain.Analysis{
			Operation:  domain.OperationGeneral,
			Expression: problem,
			Context:    "Structured analysis unavailable: " + cause.Error(),
		},
		Calculation: domain.Calculation{
			Method:    domain.MethodFallback,
			Result:    raw,
			Operation: domain.OperationGeneral,
		},
		Explanation:    raw,
		RawModelOutput: raw,
	}
	r.transition(ctx, domain.StageCompleted, nil)
	r.solved(ctx, resp)
	return resp, nil
}

// complete calls the completer under the per-call timeout. Every failure, including an
// empty completion or an expired deadline, comes back as a *domain.ProviderError.
func (r *run) complete(ctx context.Context, purpose, p string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.o.callTimeout)
	defer cancel()

	start := time.Now()
	text, err := r.o.completer.Generate(callCtx, p)
	if err == nil && strings.TrimSpace(text) == "" {
		err = &domain.ProviderError{Provider: domain.ClientCompleter, Message: "empty completion"}
	}
	if err != nil {
		var pe *domain.ProviderError
		if !errors.As(err, &pe) {
			err = &domain.ProviderError{Provider: domain.ClientCompleter, Message: purpose + " call failed", Err: err}
		}
	}
	r.call(ctx, domain.ClientCompleter, purpose, time.Since(start), err)
	return strings.TrimSpace(text), err
}

// computeWithRetry calls the symbolic math client and, on failure, retries exactly once
// with the default token on the same expression.
func (r *run) computeWithRetry(ctx context.Context, token, expression string) (domain.Computation, error) {
	comp, err := r.compute(ctx, "compute", token, expression)
	if err == nil {
		return comp, nil
	}
	r.o.logger.Debug("Compute failed, retrying with default operation",
		"request_id", r.id, "operation", token, "error", err)

	comp, retryErr := r.compute(ctx, "compute_retry", catalog.DefaultToken, expression)
	if retryErr == nil {
		return comp, nil
	}
	return domain.Computation{}, errors.Join(err, retryErr)
}

func (r *run) compute(ctx context.Context, purpose, token, expression string) (domain.Computation, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.o.callTimeout)
	defer cancel()

	start := time.Now()
	comp, err := r.o.symbolic.Compute(callCtx, token, expression)
	if err != nil {
		var ce *domain.ComputeError
		if !errors.As(err, &ce) {
			err = &domain.ComputeError{Operation: token, Expression: expression, Message: "call failed", Err: err}
		}
	}
	r.call(ctx, domain.ClientSymbolicMath, purpose, time.Since(start), err)
	return comp, err
}

func (r *run) transition(ctx context.Context, to domain.Stage, cause error) {
	from := r.stage
	r.stage = to
	r.o.logger.Debug("Stage transition", "request_id", r.id, "from", from, "to", to)
	if r.o.hooks.OnStage != nil {
		r.o.hooks.OnStage(ctx, &domain.StageEvent{
			EventBase: r.event(domain.EventStage),
			From:      from,
			To:        to,
			Cause:     cause,
		})
	}
}

func (r *run) call(ctx context.Context, client, purpose string, d time.Duration, err error) {
	if r.o.hooks.OnCall != nil {
		r.o.hooks.OnCall(ctx, &domain.CallEvent{
			EventBase: r.event(domain.EventCall),
			Client:    client,
			Purpose:   purpose,
			Duration:  d,
			Err:       err,
		})
	}
}

func (r *run) solved(ctx context.Context, resp *domain.SolveResponse) {
	e := &domain.SolvedEvent{
		EventBase: r.event(domain.EventSolved),
		Duration:  time.Since(r.start),
	}
	if resp != nil {
		e.Success = resp.Success
		e.Method = resp.Calculation.Method
		r.o.logger.Info("Solve completed", "request_id", r.id, "method", e.Method, "duration", e.Duration)
	}
	if r.o.hooks.OnSolved != nil {
		r.o.hooks.OnSolved(ctx, e)
	}
}

func (r *run) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RequestID: r.id}
}

func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
