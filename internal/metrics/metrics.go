package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Stub server metrics
	StubRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kuflow_stub_request_duration_seconds",
			Help:    "Stub server request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	StubRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuflow_stub_requests_total",
			Help: "Total number of requests served by the stub server",
		},
		[]string{"method", "route", "status"},
	)

	StubIdempotentReplays = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuflow_stub_idempotent_replays_total",
			Help: "Creates answered with an existing resource because the id was already used",
		},
		[]string{"kind"},
	)

	// Store metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kuflow_store_operation_duration_seconds",
			Help:    "Stub store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~200ms
		},
		[]string{"backend", "operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuflow_store_errors_total",
			Help: "Total number of stub store errors",
		},
		[]string{"backend", "operation"},
	)
)

// RecordStubRequest records a request served by the stub server.
func RecordStubRequest(method, route, status string, duration float64) {
	StubRequestDuration.WithLabelValues(method, route, status).Observe(duration)
	StubRequestsTotal.WithLabelValues(method, route, status).Inc()
}

func RecordIdempotentReplay(kind string) {
	StubIdempotentReplays.WithLabelValues(kind).Inc()
}

func RecordStoreOperation(backend, operation string, duration float64) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration)
}

func RecordStoreError(backend, operation string) {
	StoreErrors.WithLabelValues(backend, operation).Inc()
}
