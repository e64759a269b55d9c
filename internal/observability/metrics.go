// Package observability owns the Prometheus registry and the collectors fed by
// the HTTP stack, the inventory store and the background collaborators.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kord-engine/kord/internal/inventory"
	jobmetrics "github.com/kord-engine/kord/internal/jobs"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	mutations         *prometheus.CounterVec
	persistFailures   prometheus.Counter
	syncRuns          *prometheus.CounterVec
	syncDuration      prometheus.Histogram
	assistantCalls    *prometheus.CounterVec
	assistantDuration *prometheus.HistogramVec

	jobs *jobmetrics.Metrics
}

// NewMetrics initialises the registry and every collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kord_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kord_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kord_store_mutations_total",
		Help: "Inventory mutations by kind and outcome.",
	}, []string{"kind", "outcome"})
	persistFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kord_store_persist_failures_total",
		Help: "Failed writes of inventory state to durable storage.",
	})
	syncRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kord_marketplace_sync_total",
		Help: "Marketplace sync triggers by outcome.",
	}, []string{"outcome"})
	syncDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kord_marketplace_sync_duration_seconds",
		Help:    "Wall time of marketplace sync runs.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30},
	})
	assistantCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kord_assistant_requests_total",
		Help: "Assistant requests by kind and outcome.",
	}, []string{"kind", "outcome"})
	assistantDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kord_assistant_request_duration_seconds",
		Help:    "Assistant request duration by kind.",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"kind"})
	registry.MustRegister(requests, duration, mutations, persistFailures,
		syncRuns, syncDuration, assistantCalls, assistantDuration)

	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		mutations:         mutations,
		persistFailures:   persistFailures,
		syncRuns:          syncRuns,
		syncDuration:      syncDuration,
		assistantCalls:    assistantCalls,
		assistantDuration: assistantDuration,
		jobs:              jobmetrics.NewMetrics(registry),
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Jobs returns the background job collectors registered on this registry.
func (m *Metrics) Jobs() *jobmetrics.Metrics {
	if m == nil {
		return nil
	}
	return m.jobs
}

// Mutation implements inventory.Recorder.
func (m *Metrics) Mutation(kind inventory.ChangeKind, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.mutations.WithLabelValues(string(kind), outcome).Inc()
}

// PersistFailure implements inventory.Recorder.
func (m *Metrics) PersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// Sync implements marketplace.Recorder.
func (m *Metrics) Sync(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(outcome).Inc()
	if outcome != "rejected" {
		m.syncDuration.Observe(elapsed.Seconds())
	}
}

// Assistant implements assistant.Recorder.
func (m *Metrics) Assistant(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.assistantCalls.WithLabelValues(kind, outcome).Inc()
	if outcome != "rejected" {
		m.assistantDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
