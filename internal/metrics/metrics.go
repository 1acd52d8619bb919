// Package metrics exposes Prometheus collectors for the acquisition and prediction pipelines.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	acquisitionAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsverdict_acquisition_attempts_total",
			Help: "Total number of acquisition tries, labeled by site and outcome.",
		},
		[]string{"site", "outcome"},
	)

	acquisitionFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsverdict_acquisition_fallbacks_total",
			Help: "Total number of acquisitions answered with fallback content, labeled by site.",
		},
		[]string{"site"},
	)

	fetchTLSRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsverdict_fetch_tls_retries_total",
			Help: "Total number of fetch round trips retried after a transient TLS handshake failure.",
		},
		[]string{"site"},
	)

	fetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsverdict_fetch_duration_seconds",
			Help:    "Histogram of article fetch latencies, labeled by site.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		},
		[]string{"site"},
	)

	fetchBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsverdict_fetch_bytes_total",
			Help: "Total number of bytes fetched, labeled by site.",
		},
		[]string{"site"},
	)

	extractionStrategyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsverdict_extraction_strategy_total",
			Help: "Total number of successful extractions, labeled by strategy.",
		},
		[]string{"strategy"},
	)

	modelLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsverdict_model_loads_total",
			Help: "Total number of classifier load executions, labeled by status.",
		},
		[]string{"status"},
	)

	modelLoadDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsverdict_model_load_duration_seconds",
			Help:    "Histogram of classifier deserialization durations.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsverdict_predictions_total",
			Help: "Total number of predictions, labeled by result (FAKE, REAL or error).",
		},
		[]string{"result"},
	)

	inferenceDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsverdict_inference_duration_seconds",
			Help:    "Histogram of single-text inference durations.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	workerPoolInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsverdict_worker_pool_in_flight",
			Help: "Number of CPU-bound tasks currently holding a worker pool slot.",
		},
	)

	rateLimitDelaysSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsverdict_rate_limit_delays_seconds",
			Help:    "Histogram of rate limit wait durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
		},
		[]string{"method", "route"},
	)
)

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAcquisitionAttempt counts one acquisition try.
func ObserveAcquisitionAttempt(site, outcome string) {
	acquisitionAttemptsTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveFallback counts an acquisition answered with fallback content.
func ObserveFallback(site string) {
	acquisitionFallbacksTotal.WithLabelValues(SanitizeSite(site)).Inc()
}

// ObserveTLSRetry records a round trip retried after a TLS handshake timeout.
func ObserveTLSRetry(site string) {
	fetchTLSRetriesTotal.WithLabelValues(SanitizeSite(site)).Inc()
}

// ObserveFetch records a completed fetch.
func ObserveFetch(site string, duration time.Duration, bytesFetched int) {
	sanitizedSite := SanitizeSite(site)
	fetchDurationSeconds.WithLabelValues(sanitizedSite).Observe(duration.Seconds())
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(sanitizedSite).Add(float64(bytesFetched))
	}
}

// ObserveExtraction counts the strategy that produced the article body.
func ObserveExtraction(strategy string) {
	extractionStrategyTotal.WithLabelValues(strategy).Inc()
}

// ObserveModelLoad records one classifier load execution.
func ObserveModelLoad(status string, duration time.Duration) {
	modelLoadsTotal.WithLabelValues(status).Inc()
	modelLoadDurationSeconds.Observe(duration.Seconds())
}

// ObservePrediction counts a prediction outcome.
func ObservePrediction(result string) {
	predictionsTotal.WithLabelValues(result).Inc()
}

// ObserveInference records a single inference duration.
func ObserveInference(duration time.Duration) {
	inferenceDurationSeconds.Observe(duration.Seconds())
}

// IncPoolInFlight increments the worker pool gauge.
func IncPoolInFlight() {
	workerPoolInFlight.Inc()
}

// DecPoolInFlight decrements the worker pool gauge.
func DecPoolInFlight() {
	workerPoolInFlight.Dec()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	rateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
