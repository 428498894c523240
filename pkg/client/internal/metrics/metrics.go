// Package metrics holds the Prometheus collectors of the SDK, the
// kuflow_client_* and kuflow_worker_* series.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Client metrics
	ClientRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuflow_client_requests_total",
			Help: "Total number of KuFlow API calls by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	ClientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kuflow_client_request_duration_seconds",
			Help:    "KuFlow API call duration in seconds, retries included",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"operation"},
	)

	ClientRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuflow_client_retries_total",
			Help: "Total number of retried KuFlow API attempts",
		},
		[]string{"operation"},
	)

	ClientInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kuflow_client_requests_in_flight",
			Help: "Current number of KuFlow API calls awaiting a response",
		},
	)

	// Worker heartbeat metrics
	HeartbeatsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuflow_worker_heartbeats_total",
			Help: "Total number of worker registrations sent by heartbeats",
		},
		[]string{"result"},
	)
)

// RecordClientRequest records a finished API call.
func RecordClientRequest(operation, status string, duration float64) {
	ClientRequestsTotal.WithLabelValues(operation, status).Inc()
	ClientRequestDuration.WithLabelValues(operation).Observe(duration)
}

func RecordClientRetry(operation string) {
	ClientRetries.WithLabelValues(operation).Inc()
}

func RecordHeartbeat(result string) {
	HeartbeatsTotal.WithLabelValues(result).Inc()
}
