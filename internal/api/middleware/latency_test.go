package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatency(t *testing.T) {
	t.Run("delays the request", func(t *testing.T) {
		handler := Latency(30 * time.Millisecond)(okHandler())

		start := time.Now()
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("stops when the client goes away", func(t *testing.T) {
		called := false
		handler := Latency(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, called)
	})

	t.Run("zero is a no-op", func(t *testing.T) {
		next := okHandler()
		assert.NotNil(t, Latency(0)(next))
	})
}
