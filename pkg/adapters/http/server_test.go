package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mathsolver"
	"github.com/aretw0/mathsolver/internal/logging"
	"github.com/aretw0/mathsolver/pkg/adapters/memory"
	"github.com/aretw0/mathsolver/pkg/domain"
	"github.com/aretw0/mathsolver/pkg/observability"
)

const structured = "OPERATION: derivative\nEXPRESSION: x^2\nRESULT: 2x\nSTEPS: apply power rule"

func newTestHandler(replies []memory.Reply, opts ...Option) http.Handler {
	eng := mathsolver.New(memory.NewCompleter(replies...))
	opts = append([]Option{WithLogger(logging.NewNop())}, opts...)
	return NewHandler(eng, opts...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestSolve_Success(t *testing.T) {
	h := newTestHandler([]memory.Reply{memory.Text(structured), memory.Text("Use the power rule.")})

	w := do(t, h, "POST", "/solve", `{"problem":"Find the derivative of x^2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp domain.SolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "Find the derivative of x^2", resp.OriginalProblem)
	assert.Equal(t, "derive", resp.Analysis.Operation)
	assert.Equal(t, "2x", resp.Calculation.Result)
	assert.Equal(t, "Use the power rule.", resp.Explanation)
}

func TestSolve_MissingProblem(t *testing.T) {
	h := newTestHandler(nil)

	for _, body := range []string{`{}`, `{"problem":""}`, `{"problem":"   "}`, `not json`, `{"problem": 12}`} {
		t.Run(body, func(t *testing.T) {
			w := do(t, h, "POST", "/solve", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, map[string]any{"error": "Problem statement is required"}, decode(t, w))
		})
	}
}

func TestSolve_OversizedProblem(t *testing.T) {
	h := newTestHandler(nil, WithMaxProblemSize(16))

	body, _ := json.Marshal(domain.ProblemRequest{Problem: strings.Repeat("x", 17)})
	w := do(t, h, "POST", "/solve", string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "maximum allowed size")
}

func TestSolve_OversizedBody(t *testing.T) {
	h := newTestHandler(nil)

	body := `{"problem":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	w := do(t, h, "POST", "/solve", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "maximum allowed size")
}

func TestSolve_DerivativeConstantUsesFallback(t *testing.T) {
	h := newTestHandler([]memory.Reply{
		memory.Text("OPERATION: derivative\nEXPRESSION: x^2\nRESULT: 7\nSTEPS: none"),
		memory.Text("The derivative of x^2 is 2x."),
	})

	w := do(t, h, "POST", "/solve", `{"problem":"Find the derivative of x^2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.SolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.MethodFallback, resp.Calculation.Method)
	assert.Equal(t, domain.OperationGeneral, resp.Analysis.Operation)
	assert.Equal(t, "The derivative of x^2 is 2x.", resp.Calculation.Result)
	assert.NotEqual(t, "7", resp.Calculation.Result)
}

func TestSolve_BothPathsFail(t *testing.T) {
	h := newTestHandler([]memory.Reply{memory.Fail("invalid API key"), memory.Fail("quota exceeded")})

	w := do(t, h, "POST", "/solve", `{"problem":"What is 2+2?"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	out := decode(t, w)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["error"], "invalid API key")
	assert.Contains(t, out["details"], "quota exceeded")
}

// Success and shape are stable across repeated calls even when the explanation differs.
func TestSolve_RepeatedCallsSameShape(t *testing.T) {
	h := newTestHandler([]memory.Reply{
		memory.Text(structured), memory.Text("first explanation"),
		memory.Text(structured), memory.Text("second explanation"),
	})

	first := decode(t, do(t, h, "POST", "/solve", `{"problem":"Find the derivative of x^2"}`))
	second := decode(t, do(t, h, "POST", "/solve", `{"problem":"Find the derivative of x^2"}`))

	assert.Equal(t, first["success"], second["success"])
	assert.NotEqual(t, first["explanation"], second["explanation"])
	for key := range first {
		assert.Contains(t, second, key)
	}
}

func TestSolve_NeverOKWithoutSuccess(t *testing.T) {
	scripts := [][]memory.Reply{
		{memory.Text(structured), memory.Text("ok")},
		{memory.Text("no labels at all"), memory.Text("ok")},
		{memory.Fail("down")},
		{memory.Text(""), memory.Text("fallback answer")},
	}
	for i, script := range scripts {
		w := do(t, newTestHandler(script), "POST", "/solve", `{"problem":"integrate x"}`)
		out := decode(t, w)
		if w.Code == http.StatusOK {
			assert.Equal(t, true, out["success"], "script %d", i)
			assert.NotEmpty(t, out["originalProblem"], "script %d", i)
			assert.NotEmpty(t, out["analysis"].(map[string]any)["operation"], "script %d", i)
			assert.NotEmpty(t, out["calculation"].(map[string]any)["result"], "script %d", i)
		} else {
			assert.Equal(t, http.StatusInternalServerError, w.Code, "script %d", i)
			assert.Equal(t, false, out["success"], "script %d", i)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := newTestHandler(nil)

	for _, path := range []string{"/solve", "/health", "/anything"} {
		w := do(t, h, "OPTIONS", path, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestHealth(t *testing.T) {
	t.Run("no credential", func(t *testing.T) {
		w := do(t, newTestHandler(nil), "GET", "/health", "")
		require.Equal(t, http.StatusOK, w.Code)
		out := decode(t, w)
		assert.Equal(t, "healthy", out["status"])
		assert.Equal(t, map[string]any{"gemini": false, "newton": false}, out["services"])
		assert.Equal(t, mathsolver.Version, out["version"])
	})

	t.Run("configured", func(t *testing.T) {
		h := newTestHandler(nil, WithServices(Services{Gemini: true, Newton: true}))
		out := decode(t, do(t, h, "GET", "/health", ""))
		assert.Equal(t, map[string]any{"gemini": true, "newton": true}, out["services"])
	})
}

func TestOperationsAndExamples(t *testing.T) {
	h := newTestHandler(nil)

	ops := decode(t, do(t, h, "GET", "/operations", ""))
	assert.Contains(t, ops["operations"], "derive")
	assert.Contains(t, ops["operations"], "integrate")
	details, ok := ops["details"].([]any)
	require.True(t, ok)
	assert.Len(t, details, len(ops["operations"].([]any)))

	ex := decode(t, do(t, h, "GET", "/examples", ""))
	assert.NotEmpty(t, ex["examples"])
}

func TestIndexAndDocs(t *testing.T) {
	h := newTestHandler(nil)

	w := do(t, h, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fetch('/solve'`)

	w = do(t, h, "GET", "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("openapi:")))

	w = do(t, h, "GET", "/swagger", "")
	assert.Contains(t, w.Body.String(), "swagger-ui")
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", doc.Info.Version)
	assert.NotNil(t, doc.Paths.Find("/solve"))
}

func TestInfo(t *testing.T) {
	out := decode(t, do(t, newTestHandler(nil), "GET", "/info", ""))
	assert.Equal(t, "mathsolver-http", out["app"])
	assert.Equal(t, mathsolver.Version, out["version"])
	assert.Equal(t, "1.0.0", out["api_version"])
}

func TestMetricsRoute(t *testing.T) {
	w := do(t, newTestHandler(nil), "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	m := observability.NewMetrics()
	eng := mathsolver.New(memory.NewCompleter(memory.Text(structured), memory.Text("ok")),
		mathsolver.WithLifecycleHooks(m.Hooks()))
	h := NewHandler(eng, WithMetrics(m.Handler()), WithLogger(logging.NewNop()))

	require.Equal(t, http.StatusOK, do(t, h, "POST", "/solve", `{"problem":"derive x^2"}`).Code)
	w = do(t, h, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mathsolver_solves_total{method="ai",outcome="success"} 1`)
}

type panicSolver struct{}

func (panicSolver) SolveRequest(context.Context, domain.ProblemRequest) (*domain.SolveResponse, error) {
	panic("boom")
}

func TestRecoverer(t *testing.T) {
	h := NewHandler(panicSolver{}, WithLogger(logging.NewNop()))
	w := do(t, h, "POST", "/solve", `{"problem":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
