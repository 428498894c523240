package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.Equal(t, 3, policy.MaxRetries)
	assert.Equal(t, 800*time.Millisecond, policy.InitialBackoff)
	assert.Equal(t, 30*time.Second, policy.MaxBackoff)
	assert.Equal(t, 2.0, policy.BackoffFactor)
	assert.Equal(t, 0.1, policy.JitterFactor)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:     5,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     1 * time.Minute,
		BackoffFactor:  2.0,
		JitterFactor:   0, // No jitter for predictable tests
	}

	tests := []struct {
		retry    int
		expected time.Duration
	}{
		{-1, 1 * time.Second},
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{10, 1 * time.Minute}, // Capped at max
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, policy.Backoff(tt.retry), "retry %d", tt.retry)
	}
}

func TestRetryPolicy_Backoff_WithJitter(t *testing.T) {
	policy := RetryPolicy{
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     1 * time.Minute,
		BackoffFactor:  2.0,
		JitterFactor:   0.5,
	}

	for i := 0; i < 10; i++ {
		backoff := policy.Backoff(1)
		// Base is 2s, with 50% jitter, range is 1s-3s
		assert.GreaterOrEqual(t, backoff, 1*time.Second)
		assert.LessOrEqual(t, backoff, 3*time.Second)
	}
}

func TestRetryPolicy_Normalized(t *testing.T) {
	p := RetryPolicy{MaxRetries: 2, MaxBackoff: time.Millisecond, BackoffFactor: 0.5}.normalized()

	assert.Equal(t, 2, p.MaxRetries)
	assert.Equal(t, DefaultRetryPolicy().InitialBackoff, p.InitialBackoff)
	assert.Equal(t, p.InitialBackoff, p.MaxBackoff)
	assert.Equal(t, 1.0, p.BackoffFactor)
}

func fastRetry(retries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

// flakyServer answers failStatus for the first failures calls, then ok.
func flakyServer(t *testing.T, failures int32, failStatus, okStatus int, okBody string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n <= failures {
			w.WriteHeader(failStatus)
			_, _ = fmt.Fprintf(w, `{"status":%d,"message":"try again"}`, failStatus)
			return
		}
		w.WriteHeader(okStatus)
		_, _ = w.Write([]byte(okBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestRetry_UnavailableThenOK(t *testing.T) {
	srv, hits := flakyServer(t, 2, http.StatusServiceUnavailable, http.StatusOK, `{"id":"dummy"}`)

	c, err := New(srv.URL, WithRetryPolicy(fastRetry(3)))
	require.NoError(t, err)
	defer c.Close()

	auth, err := c.Echo().RequestEcho(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dummy", auth.ID)
	assert.Equal(t, int32(3), hits.Load())
}

func TestRetry_ThrottledThenOK(t *testing.T) {
	srv, hits := flakyServer(t, 1, http.StatusTooManyRequests, http.StatusOK, `{"id":"dummy"}`)

	c, err := New(srv.URL, WithRetryPolicy(fastRetry(2)))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Echo().RequestEcho(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRetry_CreateIsRetried(t *testing.T) {
	srv, hits := flakyServer(t, 1, http.StatusBadGateway, http.StatusCreated, `{"id":"`+uuid.NewString()+`","state":"RUNNING"}`)

	c, err := New(srv.URL, WithRetryPolicy(fastRetry(2)))
	require.NoError(t, err)
	defer c.Close()

	id := uuid.New()
	_, err = c.Process().Create(context.Background(), ProcessCreateParams{ID: &id, ProcessDefinitionID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRetry_GivesUp(t *testing.T) {
	srv, hits := flakyServer(t, 100, http.StatusServiceUnavailable, http.StatusOK, `{}`)

	c, err := New(srv.URL, WithRetryPolicy(fastRetry(2)))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Echo().RequestEcho(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestRetry_NotForClientErrors(t *testing.T) {
	srv, hits := flakyServer(t, 100, http.StatusConflict, http.StatusOK, `{}`)

	c, err := New(srv.URL, WithRetryPolicy(fastRetry(3)))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Echo().RequestEcho(context.Background())

	assert.True(t, IsConflict(err))
	assert.Equal(t, int32(1), hits.Load())
}

func TestRetry_Disabled(t *testing.T) {
	srv, hits := flakyServer(t, 100, http.StatusServiceUnavailable, http.StatusOK, `{}`)

	c, err := New(srv.URL, WithRetryPolicy(NoRetry()))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Echo().RequestEcho(context.Background())

	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	assert.Equal(t, int32(1), hits.Load())
}
