// Package admin provides the /admin/* control plane: state snapshots and
// restores, reset, request inspection and the simulated clock.
package admin

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wondertwin-ai/backoffice/pkg/server"
	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// StateStore is implemented by whatever owns the service state.
type StateStore interface {
	// Snapshot returns the full state as a JSON-serializable value.
	Snapshot() any
	// LoadState replaces the full state from a JSON body.
	LoadState(data []byte) error
	// Reset clears all state.
	Reset()
}

// Handler provides the admin endpoints.
type Handler struct {
	state  StateStore
	mw     *server.Middleware
	clock  *store.Clock
	logger *zap.Logger
}

// NewHandler creates a new admin handler. mw and clock may be nil.
func NewHandler(state StateStore, mw *server.Middleware, clock *store.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{state: state, mw: mw, clock: clock, logger: logger}
}

// Routes mounts the admin endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/reset", h.handleReset)
		r.Get("/state", h.handleGetState)
		r.Post("/state", h.handleLoadState)
		r.Get("/requests", h.handleGetRequests)
		r.Post("/time/advance", h.handleTimeAdvance)
		r.Get("/time", h.handleGetTime)
		r.Get("/health", h.handleHealth)
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.state.Reset()
	if h.mw != nil {
		h.mw.ReqLog.Clear()
	}
	if h.clock != nil {
		h.clock.Reset()
	}
	h.logger.Info("state reset")
	server.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *Handler) handleLoadState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		server.Error(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}
	if err := h.state.LoadState(body); err != nil {
		server.Error(w, http.StatusBadRequest, "failed to load state: "+err.Error())
		return
	}
	h.logger.Info("state loaded", zap.Int("bytes", len(body)))
	server.JSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (h *Handler) handleGetRequests(w http.ResponseWriter, r *http.Request) {
	if h.mw == nil {
		server.JSON(w, http.StatusOK, map[string]any{"items": []server.RequestLogEntry{}})
		return
	}
	server.JSON(w, http.StatusOK, map[string]any{"items": h.mw.ReqLog.Entries()})
}

func (h *Handler) handleTimeAdvance(w http.ResponseWriter, r *http.Request) {
	if h.clock == nil {
		server.Error(w, http.StatusBadRequest, "simulated clock not configured")
		return
	}

	var req struct {
		Duration string `json:"duration"` // Go duration string, e.g. "24h", "30m"
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		server.Error(w, http.StatusBadRequest, "invalid duration: "+err.Error())
		return
	}
	// Moving backwards would let new timestamps precede stored ones.
	if d < 0 {
		server.Error(w, http.StatusBadRequest, "duration must not be negative")
		return
	}

	h.clock.Advance(d)
	server.JSON(w, http.StatusOK, map[string]any{
		"status":    "advanced",
		"duration":  d.String(),
		"offset":    h.clock.Offset().String(),
		"simulated": h.clock.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleGetTime(w http.ResponseWriter, r *http.Request) {
	if h.clock == nil {
		server.JSON(w, http.StatusOK, map[string]any{
			"real": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	server.JSON(w, http.StatusOK, map[string]any{
		"real":      time.Now().UTC().Format(time.RFC3339),
		"simulated": h.clock.Now().Format(time.RFC3339),
		"offset":    h.clock.Offset().String(),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
