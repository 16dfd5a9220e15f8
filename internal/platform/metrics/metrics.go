// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics exposes Prometheus instrumentation for the Renkei gateway.
//
// # Architecture
//
// A single [Registry] owns every collector so that tests can build isolated
// instances instead of sharing process-global state. The HTTP middleware
// observes request volume and latency; domain services record their own
// counters (session issuance, rotations, provider calls) through typed
// helper methods.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles all Renkei collectors behind one Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	sessionsIssuedTotal   prometheus.Counter
	sessionRotationsTotal *prometheus.CounterVec
	loginRejectionsTotal  *prometheus.CounterVec

	providerRequestsTotal   *prometheus.CounterVec
	providerRequestDuration *prometheus.HistogramVec
}

// New constructs a [Registry] with all collectors registered.
func New() *Registry {
	registry := prometheus.NewRegistry()

	m := &Registry{
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renkei_http_requests_total",
			Help: "Total HTTP requests processed, by method, route and status.",
		}, []string{"method", "route", "status"}),

		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "renkei_http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		sessionsIssuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renkei_sessions_issued_total",
			Help: "Total credential pairs issued via the login callback.",
		}),

		sessionRotationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renkei_session_rotations_total",
			Help: "Total refresh rotations, by outcome (success, denied).",
		}, []string{"outcome"}),

		loginRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renkei_login_rejections_total",
			Help: "Total login callbacks rejected, by reason.",
		}, []string{"reason"}),

		providerRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renkei_provider_requests_total",
			Help: "Total upstream model-provider completions, by provider and outcome.",
		}, []string{"provider", "outcome"}),

		providerRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "renkei_provider_request_duration_seconds",
			Help:    "Upstream model-provider latency distribution.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"provider"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.sessionsIssuedTotal,
		m.sessionRotationsTotal,
		m.loginRejectionsTotal,
		m.providerRequestsTotal,
		m.providerRequestDuration,
	)

	return m
}

// Handler returns the HTTP handler serving the /metrics scrape endpoint.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// # Domain Counters

// SessionIssued records a successful credential issuance.
func (m *Registry) SessionIssued() {
	m.sessionsIssuedTotal.Inc()
}

// SessionRotated records a refresh rotation outcome ("success" or "denied").
func (m *Registry) SessionRotated(outcome string) {
	m.sessionRotationsTotal.WithLabelValues(outcome).Inc()
}

// LoginRejected records a rejected login callback with its reason code.
func (m *Registry) LoginRejected(reason string) {
	m.loginRejectionsTotal.WithLabelValues(reason).Inc()
}

// ProviderRequest records one upstream completion call and its duration.
func (m *Registry) ProviderRequest(provider, outcome string, elapsed time.Duration) {
	m.providerRequestsTotal.WithLabelValues(provider, outcome).Inc()
	m.providerRequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// # HTTP Instrumentation

type instrumentedWriter struct {
	http.ResponseWriter
	status int
}

func (writer *instrumentedWriter) WriteHeader(code int) {
	writer.status = code
	writer.ResponseWriter.WriteHeader(code)
}

// Middleware observes request count and latency for every route.
//
// # Cardinality
//
// The raw URL path is NOT used as a label; the chi route pattern is resolved
// after the handler runs so that /acl/role/123 and /acl/role/456 share one
// series. Unmatched requests collapse into the "unmatched" route.
func (m *Registry) Middleware(routePattern func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			startTime := time.Now()
			wrapped := &instrumentedWriter{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(wrapped, request)

			route := routePattern(request)
			if route == "" {
				route = "unmatched"
			}

			m.httpRequestsTotal.WithLabelValues(
				request.Method, route, strconv.Itoa(wrapped.status),
			).Inc()
			m.httpRequestDuration.WithLabelValues(
				request.Method, route,
			).Observe(time.Since(startTime).Seconds())
		})
	}
}
