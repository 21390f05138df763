package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/mathsolver/internal/config"
	"github.com/aretw0/mathsolver/internal/logging"
	"github.com/aretw0/mathsolver/internal/presentation/graph"
	"github.com/aretw0/mathsolver/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// shutdownCause names what cancelled ctx: the received signal for a *SignalContext,
// otherwise the context's cause.
func shutdownCause(ctx context.Context) string {
	if sc, ok := ctx.(*SignalContext); ok {
		if sig := sc.Signal(); sig != nil {
			return sig.String()
		}
	}
	if err := context.Cause(ctx); err != nil {
		return err.Error()
	}
	return "unknown"
}

// GlobalOptions carries the persistent command-line flags.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
	// Symbolic overrides newton.enabled when non-nil.
	Symbolic *bool
}

// LoadConfig loads the configuration and applies flag overrides on top of it.
func LoadConfig(opts GlobalOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.Symbolic != nil {
		cfg.Newton.Enabled = *opts.Symbolic
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// CreateLogger configures the application logger.
// It always writes to Stderr (to keep Stdout for results and the MCP stdio transport).
func CreateLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(os.Stderr, level, logging.Format(cfg.Format)), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// StageTrace records the stages visited by solves for the --graph overlay.
type StageTrace struct {
	mu      sync.Mutex
	visited []domain.Stage
	current domain.Stage
}

// Hooks returns lifecycle hooks feeding the trace.
func (t *StageTrace) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStage: func(ctx context.Context, e *domain.StageEvent) {
			t.mu.Lock()
			defer t.mu.Unlock()
			if len(t.visited) == 0 {
				t.visited = append(t.visited, e.From)
			}
			t.visited = append(t.visited, e.To)
			t.current = e.To
		},
	}
}

// Mermaid renders the pipeline with the recorded path highlighted.
func (t *StageTrace) Mermaid() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	overlay := &graph.Overlay{
		Visited: append([]domain.Stage(nil), t.visited...),
		Current: t.current,
	}
	return graph.GenerateMermaid(domain.Transitions(), overlay)
}

// InterruptibleReader wraps an io.Reader (like os.Stdin) and checks for a cancellation signal.
type InterruptibleReader struct {
	base   io.Reader
	cancel <-chan struct{}
}

func NewInterruptibleReader(base io.Reader, cancel <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{
		base:   base,
		cancel: cancel,
	}
}

var errInterrupted = errors.New("interrupted")

func (r *InterruptibleReader) Read(p []byte) (n int, err error) {
	// Check before blocking
	select {
	case <-r.cancel:
		return 0, errInterrupted
	default:
	}

	// Read (This blocks!)
	n, err = r.base.Read(p)

	// Check after returning
	select {
	case <-r.cancel:
		return 0, errInterrupted
	default:
	}
	return n, err
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, errInterrupted)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
