// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 15, 60},
	}, []string{"method", "route"})

	// GeneratorRequests counts text-generation calls. outcome is ok, error, malformed or rejected.
	GeneratorRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generator_requests_total",
		Help: "Text-generation calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	GeneratorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "generator_request_duration_seconds",
		Help:    "Text-generation latency by operation.",
		Buckets: []float64{.25, .5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"operation"})

	// CircuitBreakerState is 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 open, 2 half-open).",
	}, []string{"name"})

	// LabelSkips counts category/tag labels dropped because they could not be resolved or linked.
	LabelSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_label_skips_total",
		Help: "Labels skipped during resolution or linking, by kind.",
	}, []string{"kind"})

	// Recommendations counts served recommendation lists by source (stored or generated).
	Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_recommendations_total",
		Help: "Mood recommendation responses by source.",
	}, []string{"source"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency under the matched chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
