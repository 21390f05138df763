package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/mathsolver/pkg/domain"
)

const namespace = "mathsolver"

// Metrics holds the collectors fed by the solve lifecycle hooks.
type Metrics struct {
	registry *prometheus.Registry

	solves      *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	calls       *prometheus.HistogramVec
	solveTime   prometheus.Histogram
}

// NewMetrics creates the collectors on a fresh registry, together with the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Solve requests by outcome and calculation method.",
		}, []string{"outcome", "method"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Fallback branch activations by reason.",
		}, []string{"reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_transitions_total",
			Help:      "Pipeline stage transitions.",
		}, []string{"from", "to"}),
		calls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_call_duration_seconds",
			Help:      "Duration of calls to external collaborators.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 4, 8, 16},
		}, []string{"client", "purpose", "outcome"}),
		solveTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "End-to-end solve duration.",
			Buckets:   []float64{.1, .25, .5, 1, 2, 4, 8, 16, 32},
		}),
	}
	m.registry.MustRegister(
		m.solves, m.fallbacks, m.transitions, m.calls, m.solveTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry (tests, extra collectors).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that record metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStage: func(ctx context.Context, e *domain.StageEvent) {
			m.transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
			if e.To == domain.StageFallback {
				m.fallbacks.WithLabelValues(FallbackReason(e.Cause)).Inc()
			}
		},
		OnCall: func(ctx context.Context, e *domain.CallEvent) {
			m.calls.WithLabelValues(e.Client, e.Purpose, outcome(e.Err == nil)).Observe(e.Duration.Seconds())
		},
		OnSolved: func(ctx context.Context, e *domain.SolvedEvent) {
			method := e.Method
			if method == "" {
				method = "none"
			}
			m.solves.WithLabelValues(outcome(e.Success), method).Inc()
			m.solveTime.Observe(e.Duration.Seconds())
		},
	}
}

// FallbackReason classifies the error that sent a solve to the fallback branch.
func FallbackReason(err error) string {
	var (
		pe *domain.ProviderError
		ve *domain.ValidationError
	)
	switch {
	case errors.As(err, &ve):
		return "validation"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &pe):
		return "provider"
	default:
		return "other"
	}
}

// LogHooks returns hooks that write each event to logger at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStage: func(ctx context.Context, e *domain.StageEvent) {
			logger.Debug("Stage", "request_id", e.RequestID, "from", e.From, "to", e.To, "cause", e.Cause)
		},
		OnCall: func(ctx context.Context, e *domain.CallEvent) {
			if e.Err != nil {
				logger.Debug("Upstream Call (Error)", "request_id", e.RequestID, "client", e.Client, "purpose", e.Purpose, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.Debug("Upstream Call (Success)", "request_id", e.RequestID, "client", e.Client, "purpose", e.Purpose, "duration", e.Duration)
		},
		OnSolved: func(ctx context.Context, e *domain.SolvedEvent) {
			logger.Debug("Solved", "request_id", e.RequestID, "success", e.Success, "method", e.Method, "duration", e.Duration)
		},
	}
}

// Combine fans every event out to each set of hooks in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStage: func(ctx context.Context, e *domain.StageEvent) {
			for _, h := range all {
				if h.OnStage != nil {
					h.OnStage(ctx, e)
				}
			}
		},
		OnCall: func(ctx context.Context, e *domain.CallEvent) {
			for _, h := range all {
				if h.OnCall != nil {
					h.OnCall(ctx, e)
				}
			}
		},
		OnSolved: func(ctx context.Context, e *domain.SolvedEvent) {
			for _, h := range all {
				if h.OnSolved != nil {
					h.OnSolved(ctx, e)
				}
			}
		},
	}
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
