package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveClientRequest(t *testing.T) {
	initial := testutil.ToFloat64(ClientRequestsTotal.WithLabelValues("GET", "articles", "200"))

	ObserveClientRequest("GET", "articles", "200", 0.02)

	after := testutil.ToFloat64(ClientRequestsTotal.WithLabelValues("GET", "articles", "200"))
	assert.Equal(t, initial+1, after, "ClientRequestsTotal should increment by 1")

	count := testutil.CollectAndCount(ClientRequestDuration)
	assert.GreaterOrEqual(t, count, 1, "ClientRequestDuration should have observations")
}

func TestObserveClientRequestTransportFailure(t *testing.T) {
	initial := testutil.ToFloat64(ClientRequestsTotal.WithLabelValues("POST", "auth", "0"))

	ObserveClientRequest("POST", "auth", "0", 1.5)

	after := testutil.ToFloat64(ClientRequestsTotal.WithLabelValues("POST", "auth", "0"))
	assert.Equal(t, initial+1, after, "Status label 0 should record transport failures")
}

func TestObserveTokenRefresh(t *testing.T) {
	initialSuccess := testutil.ToFloat64(TokenRefreshesTotal.WithLabelValues("success"))
	initialFailure := testutil.ToFloat64(TokenRefreshesTotal.WithLabelValues("failure"))

	ObserveTokenRefresh("success")
	ObserveTokenRefresh("failure")
	ObserveTokenRefresh("failure")

	assert.Equal(t, initialSuccess+1, testutil.ToFloat64(TokenRefreshesTotal.WithLabelValues("success")))
	assert.Equal(t, initialFailure+2, testutil.ToFloat64(TokenRefreshesTotal.WithLabelValues("failure")))
}

func TestObserveReplayAndAuthFailure(t *testing.T) {
	initialReplays := testutil.ToFloat64(RequestReplaysTotal)
	initialFailures := testutil.ToFloat64(AuthFailuresTotal)

	ObserveReplay()
	ObserveAuthFailure()

	assert.Equal(t, initialReplays+1, testutil.ToFloat64(RequestReplaysTotal))
	assert.Equal(t, initialFailures+1, testutil.ToFloat64(AuthFailuresTotal))
}

func TestHTTPMetricsExist(t *testing.T) {
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsInFlight)

	initial := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	HTTPRequestsTotal.WithLabelValues("GET", "/health", "200").Inc()
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	assert.Equal(t, initial+1, after)
}

func TestHTTPRequestsInFlightGauge(t *testing.T) {
	initial := testutil.ToFloat64(HTTPRequestsInFlight)

	HTTPRequestsInFlight.Inc()
	HTTPRequestsInFlight.Inc()
	assert.Equal(t, initial+2, testutil.ToFloat64(HTTPRequestsInFlight))

	HTTPRequestsInFlight.Dec()
	HTTPRequestsInFlight.Dec()
	assert.Equal(t, initial, testutil.ToFloat64(HTTPRequestsInFlight))
}

func TestTimerObserveDuration(t *testing.T) {
	timer := NewTimer()

	time.Sleep(20 * time.Millisecond)

	testHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_timer_duration_histogram",
		Help:    "Test histogram for timer duration",
		Buckets: []float64{.01, .05, .1, .5, 1},
	})
	prometheus.MustRegister(testHistogram)
	defer prometheus.Unregister(testHistogram)

	timer.ObserveDuration(testHistogram)

	count := testutil.CollectAndCount(testHistogram)
	assert.Equal(t, 1, count, "Histogram should have exactly one observation")
	assert.Greater(t, timer.Elapsed(), 0.0, "Elapsed should be positive")
}
