package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/mathsolver"
	"github.com/aretw0/mathsolver/pkg/catalog"
	"github.com/aretw0/mathsolver/pkg/domain"
	"github.com/aretw0/mathsolver/pkg/input"
)

const operationsURI = "mathsolver://operations"

// OperationsResponse lists the catalog for the list_operations tool.
type OperationsResponse struct {
	Operations []string            `json:"operations" jsonschema_description:"Canonical operation names"`
	Details    []catalog.Operation `json:"details" jsonschema_description:"Operation tokens and descriptions"`
}

// Solver defines what the MCP server needs from the engine.
type Solver interface {
	SolveRequest(ctx context.Context, req domain.ProblemRequest) (*domain.SolveResponse, error)
	Catalog() *catalog.Catalog
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	solver    Solver
	maxSize   int
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithMaxProblemSize bounds the problem statement in bytes.
func WithMaxProblemSize(n int) Option {
	return func(s *Server) { s.maxSize = n }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(solver Solver, opts ...Option) *Server {
	s := &Server{
		solver:    solver,
		maxSize:   input.DefaultMaxSize,
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("mathsolver-mcp", mathsolver.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	solveTool := mcp.NewTool("solve",
		mcp.WithDescription("Solve a math problem stated in natural language. Returns the interpreted operation, the result and an explanation."),
		mcp.WithString("problem", mcp.Required(), mcp.Description("The problem, e.g. 'Find the derivative of x^3'")),
		mcp.WithString("preferred_method", mcp.Description("Optional: 'ai' to skip symbolic computation, 'newton' to force it")),
		mcp.WithOutputSchema[domain.SolveResponse](),
	)
	s.mcpServer.AddTool(solveTool, mcp.NewStructuredToolHandler(s.handleSolve))

	operationsTool := mcp.NewTool("list_operations",
		mcp.WithDescription("List the operations the solver recognizes."),
		mcp.WithOutputSchema[OperationsResponse](),
	)
	s.mcpServer.AddTool(operationsTool, mcp.NewStructuredToolHandler(s.handleListOperations))
}

func (s *Server) handleSolve(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.SolveResponse, error) {
	problem, _ := args["problem"].(string)
	preferred, _ := args["preferred_method"].(string)

	clean, err := input.Sanitize(problem, s.maxSize)
	if err != nil {
		s.logger.Warn("MCP Solve: Input rejected", "error", err, "size", len(problem))
		return domain.SolveResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	resp, err := s.solver.SolveRequest(ctx, domain.ProblemRequest{Problem: clean, PreferredMethod: preferred})
	if err != nil {
		s.logger.Error("MCP Solve failed", "error", err)
		return domain.SolveResponse{}, err
	}
	return *resp, nil
}

func (s *Server) handleListOperations(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (OperationsResponse, error) {
	c := s.solver.Catalog()
	return OperationsResponse{
		Operations: c.Names(),
		Details:    c.Operations(),
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(operationsURI, "Operation Catalog",
		mcp.WithMIMEType("application/json"),
	), s.readOperations)
}

func (s *Server) readOperations(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.solver.Catalog().Operations())
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      operationsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
