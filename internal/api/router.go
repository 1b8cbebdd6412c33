// Package api implements the backoffice HTTP API on top of the service
// facade. Handlers narrow untyped JSON into validated service calls and
// never touch service state directly.
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wondertwin-ai/backoffice/internal/facade"
	"github.com/wondertwin-ai/backoffice/pkg/admin"
	"github.com/wondertwin-ai/backoffice/pkg/server"
)

// Options configures the handler.
type Options struct {
	// WebhookSecret, when set, makes signatures on /webhooks/ingest mandatory.
	WebhookSecret string
	// ErrorReportRate and ErrorReportBurst limit POST /errors per client IP.
	ErrorReportRate  float64
	ErrorReportBurst int
}

// Handler holds all API handler state.
type Handler struct {
	f        *facade.Facade
	opts     Options
	limiter  *rateLimiter
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(f *facade.Facade, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ErrorReportRate <= 0 {
		opts.ErrorReportRate = 5
	}
	if opts.ErrorReportBurst <= 0 {
		opts.ErrorReportBurst = 20
	}
	return &Handler{
		f:       f,
		opts:    opts,
		limiter: newRateLimiter(opts.ErrorReportRate, opts.ErrorReportBurst),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Routes mounts the API routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", h.f.Metrics.Handler())

	r.Route("/crud/{resource}", func(r chi.Router) {
		r.Get("/", h.ListEntities)
		r.Post("/", h.CreateEntity)
		r.Get("/{id}", h.GetEntity)
		r.Patch("/{id}", h.UpdateEntity)
		r.Delete("/{id}", h.RemoveEntity)
	})

	r.Route("/realtime", func(r chi.Router) {
		r.Get("/events", h.ListEvents)
		r.Post("/publish", h.Publish)
		r.Get("/subscribe", h.Subscribe)
	})

	r.Route("/email", func(r chi.Router) {
		r.Post("/send", h.SendEmail)
		r.Get("/outbox", h.Outbox)
	})

	r.Route("/banking", func(r chi.Router) {
		r.Get("/accounts", h.ListAccounts)
		r.Post("/sync", h.SyncTransactions)
		r.Get("/transactions", h.ListTransactions)
	})

	r.Route("/storage", func(r chi.Router) {
		r.Get("/", h.ListFiles)
		r.Post("/upload", h.Upload)
		r.Get("/{id}", h.GetFile)
		r.Delete("/{id}", h.RemoveFile)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.ListNotifications)
		r.Post("/send", h.SendNotification)
		r.Post("/{id}/read", h.MarkRead)
	})

	r.Route("/audit", func(r chi.Router) {
		r.Get("/", h.ListAudit)
		r.Post("/log", h.LogAudit)
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Get("/", h.ListWebhooks)
		r.Post("/ingest", h.IngestWebhook)
	})

	r.Post("/errors", h.ReportError)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"services": h.f.ServiceNames(),
	})
}

func items[T any](list []T) map[string]any {
	if list == nil {
		list = []T{}
	}
	return map[string]any{"items": list}
}

func removed() map[string]bool {
	return map[string]bool{"removed": true}
}

func notFound(w http.ResponseWriter) {
	server.Error(w, http.StatusNotFound, "Not found")
}

// fail writes err as a 400 when it is a client error and as a 500 otherwise.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var br *badRequest
	if errors.As(err, &br) {
		server.Error(w, http.StatusBadRequest, br.msg)
		return
	}
	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	server.Error(w, http.StatusInternalServerError, err.Error())
}

// Mount installs request metrics, the API routes and the admin control plane
// on srv. It must be called before any other route is added to srv.Router.
func Mount(srv *server.Server, f *facade.Facade, opts Options) *Handler {
	srv.Router.Use(f.Metrics.InstrumentHandler)

	h := NewHandler(f, opts, srv.Logger.Named("api"))
	h.Routes(srv.Router)
	admin.NewHandler(f, srv.Middleware(), f.Clock, srv.Logger.Named("admin")).Routes(srv.Router)
	return h
}
