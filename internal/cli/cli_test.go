package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mathsolver/internal/config"
	"github.com/aretw0/mathsolver/internal/logging"
	"github.com/aretw0/mathsolver/internal/testutils"
	"github.com/aretw0/mathsolver/pkg/adapters/memory"
	"github.com/aretw0/mathsolver/pkg/catalog"
	"github.com/aretw0/mathsolver/pkg/domain"
)

const structured = "OPERATION: derivative\nEXPRESSION: x^2\nRESULT: 2x\nSTEPS: apply power rule"

func testApp(replies ...memory.Reply) *App {
	return newApp(config.Default(), catalog.Default(), memory.NewCompleter(replies...), logging.NewNop())
}

func clearEnv(t *testing.T) {
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "MATHSOLVER_SYMBOLIC", "MATHSOLVER_LOG_LEVEL", "PORT"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MATHSOLVER_SYMBOLIC", "true")

	cfg, err := LoadConfig(GlobalOptions{})
	require.NoError(t, err)
	assert.True(t, cfg.Newton.Enabled)

	off := false
	cfg, err = LoadConfig(GlobalOptions{LogLevel: "debug", Symbolic: &off})
	require.NoError(t, err)
	assert.False(t, cfg.Newton.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestCreateLogger(t *testing.T) {
	_, err := CreateLogger(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)

	logger, err := CreateLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), -4))
}

func TestNewApp_WithoutCredential(t *testing.T) {
	cfg := config.Default()
	app, err := NewApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	assert.False(t, app.Services().Gemini)
	assert.False(t, app.Services().Newton)

	_, err = app.Engine.Solve(context.Background(), "What is 2+2?")
	var failed *domain.SolveFailedError
	assert.ErrorAs(t, err, &failed)
}

func TestNewApp_InvalidCatalog(t *testing.T) {
	ops := filepath.Join(t.TempDir(), "ops.yaml")
	require.NoError(t, os.WriteFile(ops, []byte("operations:\n  - name: derive\n    token: derive\n"), 0o644))

	cfg := config.Default()
	cfg.Solver.CatalogFile = ops
	_, err := NewApp(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "invalid operation catalog")
}

func TestApp_Services(t *testing.T) {
	cfg := config.Default()
	cfg.Gemini.APIKey = "secret"
	cfg.Newton.Enabled = true
	app := newApp(cfg, catalog.Default(), memory.NewCompleter(), logging.NewNop())

	assert.True(t, app.Services().Gemini)
	assert.True(t, app.Services().Newton)
	assert.True(t, app.Engine.SymbolicEnabled())
}

func TestApp_HandlerExposesMetrics(t *testing.T) {
	app := testApp(memory.Text(structured), memory.Text("ok"))
	h := app.Handler()

	for _, path := range []string{"/health", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.NotNil(t, app.MCPServer())
}

func TestServe_GracefulShutdown(t *testing.T) {
	app := testApp(memory.Text(structured), memory.Text("ok"))
	var logs syncBuffer
	app.Logger = logging.NewWithFormat(&logs, slog.LevelInfo, logging.FormatText)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() { done <- serve(ctx, app, ln, &out) }()

	url := fmt.Sprintf("http://%s/health", ln.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var body map[string]any
		return json.NewDecoder(resp.Body).Decode(&body) == nil && body["status"] == "healthy"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
	assert.Contains(t, logs.String(), `msg="Shutdown requested" cause="context canceled"`)
}

// syncBuffer is a bytes.Buffer safe for the server goroutine to log into.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestShutdownCause(t *testing.T) {
	t.Run("Signal", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sc := &SignalContext{Context: ctx, Cancel: cancel, sigVal: syscall.SIGTERM}
		assert.Equal(t, syscall.SIGTERM.String(), shutdownCause(sc))
	})

	t.Run("Cancelled Without Signal", func(t *testing.T) {
		sc := NewSignalContext(context.Background())
		sc.Cancel()
		<-sc.Done()
		assert.Nil(t, sc.Signal())
		assert.Equal(t, "context canceled", shutdownCause(sc))
	})

	t.Run("Plain Context", func(t *testing.T) {
		ctx, cancel := context.WithCancelCause(context.Background())
		cancel(errors.New("config reloaded"))
		assert.Equal(t, "config reloaded", shutdownCause(ctx))
	})
}

func TestServe_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	err = Serve(context.Background(), testApp(), port, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunSolve_OneShot(t *testing.T) {
	app := testApp(memory.Text(structured), memory.Text("Use the power rule."))
	var out bytes.Buffer

	err := RunSolve(context.Background(), app, SolveOptions{Problem: "derive x^2"}, nil, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "**Result:** 2x")
}

func TestRunSolve_JSON(t *testing.T) {
	app := testApp(memory.Text(structured), memory.Text("ok"))
	var out bytes.Buffer

	err := RunSolve(context.Background(), app, SolveOptions{Problem: "derive x^2", JSON: true}, nil, &out)
	require.NoError(t, err)

	var resp domain.SolveResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "2x", resp.Calculation.Result)
}

func TestRunSolve_OneShotFailure(t *testing.T) {
	app := testApp(memory.Fail("down"))
	err := RunSolve(context.Background(), app, SolveOptions{Problem: "derive x^2"}, nil, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunSolve_InteractiveWithGraph(t *testing.T) {
	trace := &StageTrace{}
	app := newApp(config.Default(), catalog.Default(), memory.NewCompleter(memory.Text(structured), memory.Text("ok")),
		logging.NewNop(), trace.Hooks())
	var out bytes.Buffer

	err := RunSolve(context.Background(), app, SolveOptions{Headless: true, Graph: trace},
		strings.NewReader("derive x^2\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "2x")
	assert.Contains(t, out.String(), "graph TD")
	assert.Contains(t, out.String(), "class completed current;")
	assert.Contains(t, out.String(), "class analyzing visited;")
}

func TestRunSolve_CancelledInteractive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunSolve(ctx, testApp(), SolveOptions{Headless: true}, strings.NewReader("derive x^2\n"), &bytes.Buffer{})
	assert.NoError(t, err)
}

func TestOperationsMarkdown(t *testing.T) {
	md := OperationsMarkdown(catalog.Default())
	assert.True(t, strings.HasPrefix(md, "| Operation | Token | Description |"))
	assert.Contains(t, md, "| derive | `derive` |")
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil))
	assert.NoError(t, handleExecutionError(context.Canceled))
	assert.NoError(t, handleExecutionError(fmt.Errorf("input error: %w", errInterrupted)))
	assert.Error(t, handleExecutionError(domain.ErrMissingProblem))
}

func TestNewApp_EndToEndWithGemini(t *testing.T) {
	srv := testutils.FakeGemini(t, structured, "Multiply by the exponent, then lower it by one.")
	cfg := config.Default()
	cfg.Gemini.APIKey = "test-key"
	cfg.Gemini.BaseURL = srv.URL

	app, err := NewApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/solve", strings.NewReader(`{"problem":"Find the derivative of x^2"}`)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp domain.SolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2x", resp.Calculation.Result)
	assert.Equal(t, "Multiply by the exponent, then lower it by one.", resp.Explanation)
}
