package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistration(t *testing.T) {
	// promauto registers on import; make sure nothing is nil
	assert.NotNil(t, StubRequestDuration)
	assert.NotNil(t, StubRequestsTotal)
	assert.NotNil(t, StubIdempotentReplays)

	assert.NotNil(t, StoreOperationDuration)
	assert.NotNil(t, StoreErrors)
}

func TestRecordStubRequest(t *testing.T) {
	StubRequestDuration.Reset()
	StubRequestsTotal.Reset()

	RecordStubRequest("GET", "/v2022-10-08/echo", "200", 0.001)
	RecordStubRequest("POST", "/v2022-10-08/workers", "201", 0.002)
	RecordStubRequest("GET", "/v2022-10-08/tasks/{id}", "404", 0.001)

	assert.Equal(t, 3, testutil.CollectAndCount(StubRequestsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(StubRequestsTotal.WithLabelValues("POST", "/v2022-10-08/workers", "201")))
}

func TestRecordIdempotentReplay(t *testing.T) {
	StubIdempotentReplays.Reset()

	RecordIdempotentReplay("process")

	assert.Equal(t, 1.0, testutil.ToFloat64(StubIdempotentReplays.WithLabelValues("process")))
}

func TestRecordStoreOperation(t *testing.T) {
	StoreOperationDuration.Reset()
	StoreErrors.Reset()

	RecordStoreOperation("redis", "put", 0.0005)
	RecordStoreOperation("memory", "get", 0.00001)
	RecordStoreError("redis", "get")

	assert.Equal(t, 2, testutil.CollectAndCount(StoreOperationDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(StoreErrors.WithLabelValues("redis", "get")))
}
