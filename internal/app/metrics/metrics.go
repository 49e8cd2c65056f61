// Package metrics exposes the collector's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "collector",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "collector",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "collector",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	submissionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "collector",
			Subsystem: "submissions",
			Name:      "created_total",
			Help:      "Total number of submissions accepted.",
		},
	)

	syncPushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "collector",
			Subsystem: "sync",
			Name:      "pushes_total",
			Help:      "Total number of remote state pushes by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(httpInFlight, httpRequests, httpDuration, submissionsCreated, syncPushes)
}

// Handler serves the registry in Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveSubmissionCreated counts an accepted submission.
func ObserveSubmissionCreated() {
	submissionsCreated.Inc()
}

// ObserveSyncPush counts a remote push with outcome "ok" or "error".
func ObserveSyncPush(outcome string) {
	syncPushes.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware instruments HTTP requests. The path label uses the chi route
// pattern when available to keep label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// Requests that never reach the router (preflights, unmatched paths)
		// have no route pattern; a fixed label keeps cardinality bounded.
		path := "unmatched"
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
