package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/mathsolver"
	"github.com/aretw0/mathsolver/pkg/catalog"
	"github.com/aretw0/mathsolver/pkg/domain"
	"github.com/aretw0/mathsolver/pkg/input"
)

//go:embed openapi.yaml
var rawSpec []byte

//go:embed index.html
var indexHTML []byte

// maxBodyBytes caps the request body before JSON decoding; the problem itself is
// limited separately by the sanitizer.
const maxBodyBytes = 1 << 20

// Solver is the part of the engine the HTTP surface needs.
type Solver interface {
	SolveRequest(ctx context.Context, req domain.ProblemRequest) (*domain.SolveResponse, error)
}

// Services reports which collaborators are configured. Only presence is exposed.
type Services struct {
	Gemini bool `json:"gemini"`
	Newton bool `json:"newton"`
}

// Server serves the solve API and the static front-end.
type Server struct {
	Solver         Solver
	Catalog        *catalog.Catalog
	Services       Services
	MaxProblemSize int
	Metrics        http.Handler
	Logger         *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithCatalog sets the catalog served by /operations and /examples.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) { s.Catalog = c }
}

// WithServices sets the flags reported by /health.
func WithServices(svc Services) Option {
	return func(s *Server) { s.Services = svc }
}

// WithMaxProblemSize bounds the problem statement in bytes.
func WithMaxProblemSize(n int) Option {
	return func(s *Server) { s.MaxProblemSize = n }
}

// WithMetrics mounts a Prometheus handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.Logger = logger }
}

// NewHandler creates the HTTP handler for the solver.
func NewHandler(solver Solver, opts ...Option) http.Handler {
	server := &Server{
		Solver:         solver,
		Catalog:        catalog.Default(),
		MaxProblemSize: input.DefaultMaxSize,
		Logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", server.Index)
	r.Post("/solve", server.Solve)
	r.Get("/operations", server.ListOperations)
	r.Get("/examples", server.ListExamples)
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>mathsolver API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetSwagger parses and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, err
	}
	return doc, nil
}

// Index serves the static front-end.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// Solve handles the POST /solve request.
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var body domain.ProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, input.ErrTooLarge.Error())
			return
		}
		s.Logger.Warn("Solve: Invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, domain.ErrMissingProblem.Error())
		return
	}
	if strings.TrimSpace(body.Problem) == "" {
		writeError(w, http.StatusBadRequest, domain.ErrMissingProblem.Error())
		return
	}

	problem, err := input.Sanitize(body.Problem, s.MaxProblemSize)
	if err != nil {
		s.Logger.Warn("Solve: Input rejected", "error", err, "size", len(body.Problem))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body.Problem = problem

	resp, err := s.Solver.SolveRequest(r.Context(), body)
	if err != nil {
		s.writeSolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeSolveError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrMissingProblem) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	details := ""
	var failed *domain.SolveFailedError
	if errors.As(err, &failed) {
		details = failed.Details()
	}
	s.Logger.Error("Solve failed", "error", err, "details", details)
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   err.Error(),
		"details": details,
	})
}

// ListOperations handles the GET /operations request.
func (s *Server) ListOperations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"operations": s.Catalog.Names(),
		"details":    s.Catalog.Operations(),
	})
}

// ListExamples handles the GET /examples request.
func (s *Server) ListExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"examples": s.Catalog.Examples(),
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"services": s.Services,
		"version":  mathsolver.Version,
	})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "mathsolver-http",
		"version":     mathsolver.Version,
		"api_version": apiVersion,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
