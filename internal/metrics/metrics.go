// Package metrics provides Prometheus metrics for observability.
// Metrics are organized by domain: outbound client requests and token
// lifecycle on the client side, HTTP serving on the stub backend side.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "otaku_wireframe"
)

var (
	// Client metrics - track outbound API calls and their outcomes
	ClientRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of outbound API requests by method, resource, and status code",
		},
		[]string{"method", "resource", "status"},
	)

	ClientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Outbound API request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "resource"},
	)

	// Token lifecycle metrics - track the refresh-and-replay recovery path
	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "token_refreshes_total",
			Help:      "Total number of access-token refresh attempts by result",
		},
		[]string{"result"},
	)

	RequestReplaysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_replays_total",
			Help:      "Total number of requests replayed after a successful token refresh",
		},
	)

	AuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "auth_failures_total",
			Help:      "Total number of unrecoverable authentication failures (session expiries)",
		},
	)

	// Stub backend metrics - track HTTP serving, exported at /metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// ObserveClientRequest records the outcome of one outbound API request.
// Status 0 means the request never produced a response (transport failure).
func ObserveClientRequest(method, resource, status string, durationSeconds float64) {
	ClientRequestsTotal.WithLabelValues(method, resource, status).Inc()
	ClientRequestDuration.WithLabelValues(method, resource).Observe(durationSeconds)
}

// ObserveTokenRefresh records one refresh attempt outcome.
func ObserveTokenRefresh(result string) {
	TokenRefreshesTotal.WithLabelValues(result).Inc()
}

// ObserveReplay records one replayed request.
func ObserveReplay() {
	RequestReplaysTotal.Inc()
}

// ObserveAuthFailure records one unrecoverable authentication failure.
func ObserveAuthFailure() {
	AuthFailuresTotal.Inc()
}

// Timer is a helper for measuring operation duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer starting now
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the seconds elapsed since the timer was created
func (t *Timer) Elapsed() float64 {
	return time.Since(t.start).Seconds()
}

// ObserveDuration records the elapsed time since the timer was created
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Elapsed())
}
