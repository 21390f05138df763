package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeGemini starts a server speaking the generateContent wire format. Replies are served
// in order and the last one repeats. The server is closed when the test ends.
func FakeGemini(t *testing.T, replies ...string) *httptest.Server {
	t.Helper()

	var mu sync.Mutex
	next := func() string {
		mu.Lock()
		defer mu.Unlock()
		if len(replies) == 0 {
			return ""
		}
		r := replies[0]
		if len(replies) > 1 {
			replies = replies[1:]
		}
		return r
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": next()}},
					},
					"finishReason": "STOP",
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// FailingGemini starts a server rejecting every call the way the API rejects a bad key.
func FailingGemini(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}
