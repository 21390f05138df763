package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/mathsolver"
	"github.com/aretw0/mathsolver/internal/config"
	"github.com/aretw0/mathsolver/internal/validator"
	"github.com/aretw0/mathsolver/pkg/adapters/gemini"
	httpAdapter "github.com/aretw0/mathsolver/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/mathsolver/pkg/adapters/mcp"
	"github.com/aretw0/mathsolver/pkg/adapters/newton"
	"github.com/aretw0/mathsolver/pkg/catalog"
	"github.com/aretw0/mathsolver/pkg/domain"
	"github.com/aretw0/mathsolver/pkg/observability"
	"github.com/aretw0/mathsolver/pkg/ports"
)

// App is the composed application shared by every command.
type App struct {
	Config  config.Config
	Engine  *mathsolver.Engine
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// NewApp wires the configured collaborators into an engine.
// Extra hooks receive every lifecycle event after the metrics and debug log hooks.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...domain.LifecycleHooks) (*App, error) {
	c, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	completer, err := createCompleter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, c, completer, logger, extra...), nil
}

// loadCatalog reads the configured catalog files and validates them.
func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	c, err := catalog.Load(cfg.Solver.CatalogFile, cfg.Solver.ExamplesFile)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateCatalog(c); err != nil {
		return nil, fmt.Errorf("invalid operation catalog: %w", err)
	}
	return c, nil
}

func newApp(cfg config.Config, c *catalog.Catalog, completer ports.Completer, logger *slog.Logger, extra ...domain.LifecycleHooks) *App {
	metrics := observability.NewMetrics()
	hooks := append([]domain.LifecycleHooks{metrics.Hooks(), observability.LogHooks(logger)}, extra...)

	engine := mathsolver.New(completer,
		mathsolver.WithCatalog(c),
		mathsolver.WithSymbolicMath(newton.New(cfg.Newton.BaseURL), cfg.Newton.Enabled),
		mathsolver.WithCallTimeout(cfg.Solver.CallTimeout),
		mathsolver.WithLifecycleHooks(observability.Combine(hooks...)),
		mathsolver.WithLogger(logger),
	)

	return &App{
		Config:  cfg,
		Engine:  engine,
		Metrics: metrics,
		Logger:  logger,
	}
}

func createCompleter(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.Completer, error) {
	if !cfg.HasCompletionCredential() {
		logger.Warn("No completion API key configured (GEMINI_API_KEY); solves will fail until one is set")
	}
	completer, err := gemini.New(ctx, gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
		BaseURL:     cfg.Gemini.BaseURL,
	}, gemini.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("error initializing completion client: %w", err)
	}
	return completer, nil
}

// Services reports which collaborators are configured, never their credentials.
func (a *App) Services() httpAdapter.Services {
	return httpAdapter.Services{
		Gemini: a.Config.HasCompletionCredential(),
		Newton: a.Config.Newton.Enabled,
	}
}

// Handler builds the HTTP surface.
func (a *App) Handler() http.Handler {
	return httpAdapter.NewHandler(a.Engine,
		httpAdapter.WithCatalog(a.Engine.Catalog()),
		httpAdapter.WithServices(a.Services()),
		httpAdapter.WithMaxProblemSize(a.Config.Solver.MaxProblemSize),
		httpAdapter.WithMetrics(a.Metrics.Handler()),
		httpAdapter.WithLogger(a.Logger),
	)
}

// MCPServer builds the MCP tool server.
func (a *App) MCPServer() *mcpAdapter.Server {
	return mcpAdapter.NewServer(a.Engine,
		mcpAdapter.WithMaxProblemSize(a.Config.Solver.MaxProblemSize),
		mcpAdapter.WithLogger(a.Logger),
	)
}
