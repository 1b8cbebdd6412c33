// Package metrics holds the Prometheus collectors of the backoffice service
// and the HTTP middleware that feeds them.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one backoffice instance on its own
// registry. InstrumentHandler and the Record methods are no-ops on a nil
// *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight             prometheus.Gauge
	httpRequests             *prometheus.CounterVec
	httpDuration             *prometheus.HistogramVec
	realtimePublished        prometheus.Counter
	realtimeSubscribers      prometheus.Gauge
	realtimeListenerFailures prometheus.Counter
	errorReports             *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the process
// and Go runtime collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "backoffice",
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "backoffice",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "backoffice",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"method", "route"},
		),
		realtimePublished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "backoffice",
				Subsystem: "realtime",
				Name:      "events_published_total",
				Help:      "Total number of events published on the realtime bus.",
			},
		),
		realtimeSubscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "backoffice",
				Subsystem: "realtime",
				Name:      "subscribers",
				Help:      "Current number of realtime subscribers across all channels.",
			},
		),
		realtimeListenerFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "backoffice",
				Subsystem: "realtime",
				Name:      "listener_failures_total",
				Help:      "Total number of realtime listener invocations that panicked.",
			},
		),
		errorReports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "backoffice",
				Subsystem: "errors",
				Name:      "client_reports_total",
				Help:      "Client error reports received, by outcome.",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.realtimePublished,
		m.realtimeSubscribers,
		m.realtimeListenerFailures,
		m.errorReports,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with HTTP metrics collection. Requests are
// labeled by their chi route pattern so ids never become label values.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		method := strings.ToUpper(r.Method)

		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordPublish counts one realtime publish.
func (m *Metrics) RecordPublish() {
	if m != nil {
		m.realtimePublished.Inc()
	}
}

// AddSubscribers moves the realtime subscriber gauge by delta.
func (m *Metrics) AddSubscribers(delta int) {
	if m != nil {
		m.realtimeSubscribers.Add(float64(delta))
	}
}

// RecordListenerFailure counts one panicking realtime listener.
func (m *Metrics) RecordListenerFailure() {
	if m != nil {
		m.realtimeListenerFailures.Inc()
	}
}

// RecordErrorReport counts a client error report with its outcome
// ("accepted" or "rate_limited").
func (m *Metrics) RecordErrorReport(outcome string) {
	if m != nil {
		m.errorReports.WithLabelValues(outcome).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack passes through to the underlying writer for websocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}
