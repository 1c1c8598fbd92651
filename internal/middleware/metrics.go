package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Request metrics
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "theracoach_requests_total",
		Help: "Total number of chat requests by outcome",
	}, []string{"status"})

	// Rate limit metrics
	rateLimitExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theracoach_rate_limit_exceeded_total",
		Help: "Total number of requests rejected by the rate limiter",
	})

	rateLimitErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theracoach_rate_limit_errors_total",
		Help: "Total number of rate limit store failures (failed open)",
	})

	// Upstream metrics
	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "theracoach_upstream_request_duration_seconds",
		Help:    "Duration of upstream chat-completions requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "theracoach_upstream_requests_total",
		Help: "Total number of upstream chat-completions requests",
	}, []string{"status"})

	// Stream metrics
	streamFragmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theracoach_stream_fragments_total",
		Help: "Total number of text fragments forwarded to clients",
	})

	streamBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theracoach_stream_bytes_total",
		Help: "Total number of bytes forwarded to clients",
	})
)

// Metrics provides methods to record metrics
type Metrics struct{}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest records a completed chat request by outcome
func (m *Metrics) RecordRequest(status string) {
	requestsTotal.WithLabelValues(status).Inc()
}

// RecordRateLimitExceeded records a rate limit rejection
func (m *Metrics) RecordRateLimitExceeded() {
	rateLimitExceeded.Inc()
}

// RecordRateLimitError records a rate limit store failure
func (m *Metrics) RecordRateLimitError() {
	rateLimitErrors.Inc()
}

// RecordUpstreamRequest records an upstream call
func (m *Metrics) RecordUpstreamRequest(status string, duration time.Duration) {
	upstreamRequestDuration.WithLabelValues(status).Observe(duration.Seconds())
	upstreamRequestsTotal.WithLabelValues(status).Inc()
}

// RecordStreamFragment records one forwarded text fragment
func (m *Metrics) RecordStreamFragment(bytes int) {
	streamFragmentsTotal.Inc()
	streamBytesTotal.Add(float64(bytes))
}

// StartMetricsServer starts the metrics HTTP server
func StartMetricsServer(port int, path string) error {
	router := mux.NewRouter()
	router.Handle(path, promhttp.Handler())

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
