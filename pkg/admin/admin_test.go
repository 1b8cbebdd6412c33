package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wondertwin-ai/backoffice/pkg/server"
	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// ---------------------------------------------------------------------------
// Mock state store
// ---------------------------------------------------------------------------

type mockState struct {
	mu          sync.Mutex
	data        map[string]string
	resetCalled bool
}

func newMockState() *mockState {
	return &mockState{data: map[string]string{"key": "value"}}
}

func (m *mockState) Snapshot() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

func (m *mockState) LoadState(data []byte) error {
	var d map[string]string
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = d
	return nil
}

func (m *mockState) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCalled = true
	m.data = map[string]string{"key": "value"}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func setupTestServer(t *testing.T, state StateStore, mw *server.Middleware, clock *store.Clock) *httptest.Server {
	t.Helper()
	h := NewHandler(state, mw, clock, zaptest.NewLogger(t))
	r := chi.NewRouter()
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHandleHealth(t *testing.T) {
	srv := setupTestServer(t, newMockState(), nil, store.NewClock())

	resp := get(t, srv.URL+"/admin/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, resp)["status"])
}

func TestHandleReset(t *testing.T) {
	state := newMockState()
	clk := store.NewClock()
	clk.Advance(time.Hour)
	mw := server.NewMiddleware(server.Config{}, zaptest.NewLogger(t))
	mw.ReqLog.Add(server.RequestLogEntry{Method: "GET", Path: "/health"})

	srv := setupTestServer(t, state, mw, clk)
	resp := post(t, srv.URL+"/admin/reset", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, state.resetCalled)
	assert.Zero(t, clk.Offset())
	assert.Zero(t, mw.ReqLog.Len())
}

func TestHandleResetWithNilClock(t *testing.T) {
	state := newMockState()
	srv := setupTestServer(t, state, nil, nil)

	resp := post(t, srv.URL+"/admin/reset", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, state.resetCalled)
}

func TestHandleGetState(t *testing.T) {
	srv := setupTestServer(t, newMockState(), nil, nil)

	resp := get(t, srv.URL+"/admin/state")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "value", decodeBody[map[string]string](t, resp)["key"])
}

func TestHandleLoadState(t *testing.T) {
	state := newMockState()
	srv := setupTestServer(t, state, nil, nil)

	resp := post(t, srv.URL+"/admin/state", `{"foo":"bar"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bar", state.Snapshot().(map[string]string)["foo"])
}

func TestHandleLoadStateInvalid(t *testing.T) {
	srv := setupTestServer(t, newMockState(), nil, nil)

	resp := post(t, srv.URL+"/admin/state", "{bad json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody[map[string]string](t, resp)["error"], "failed to load state")
}

func TestHandleGetRequests(t *testing.T) {
	mw := server.NewMiddleware(server.Config{}, zaptest.NewLogger(t))
	mw.ReqLog.Add(server.RequestLogEntry{Method: "GET", Path: "/test"})
	srv := setupTestServer(t, newMockState(), mw, nil)

	resp := get(t, srv.URL+"/admin/requests")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[struct {
		Items []server.RequestLogEntry `json:"items"`
	}](t, resp)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "GET", body.Items[0].Method)
	assert.Equal(t, "/test", body.Items[0].Path)
}

func TestHandleTimeAdvance(t *testing.T) {
	clk := store.NewClock()
	srv := setupTestServer(t, newMockState(), nil, clk)

	resp := post(t, srv.URL+"/admin/time/advance", `{"duration":"1h"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "advanced", decodeBody[map[string]any](t, resp)["status"])
	assert.Equal(t, time.Hour, clk.Offset())
}

func TestHandleTimeAdvanceRejects(t *testing.T) {
	tests := []struct {
		name  string
		clock *store.Clock
		body  string
	}{
		{"no clock", nil, `{"duration":"1h"}`},
		{"invalid duration", store.NewClock(), `{"duration":"not-a-duration"}`},
		{"invalid json", store.NewClock(), `{bad`},
		{"negative", store.NewClock(), `{"duration":"-1h"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupTestServer(t, newMockState(), nil, tt.clock)
			resp := post(t, srv.URL+"/admin/time/advance", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			if tt.clock != nil {
				assert.Zero(t, tt.clock.Offset())
			}
		})
	}
}

func TestHandleGetTime(t *testing.T) {
	srv := setupTestServer(t, newMockState(), nil, store.NewClock())

	body := decodeBody[map[string]any](t, get(t, srv.URL+"/admin/time"))
	assert.Contains(t, body, "real")
	assert.Contains(t, body, "simulated")
	assert.Contains(t, body, "offset")
}

func TestHandleGetTimeNoClock(t *testing.T) {
	srv := setupTestServer(t, newMockState(), nil, nil)

	body := decodeBody[map[string]any](t, get(t, srv.URL+"/admin/time"))
	assert.Contains(t, body, "real")
	assert.NotContains(t, body, "simulated")
}
