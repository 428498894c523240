package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/kuflow/kuflow-sdk-go/internal/metrics"
)

func TestRequestLogger_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RequestLogger())
	r.Get("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(metrics.StubRequestsTotal.WithLabelValues(http.MethodGet, "/tasks/{id}", "418"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/abc", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	after := testutil.ToFloat64(metrics.StubRequestsTotal.WithLabelValues(http.MethodGet, "/tasks/{id}", "418"))
	assert.Equal(t, before+1, after)
}

func TestRequestLogger_ImplicitOK(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RequestLogger())
	r.Get("/echo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	before := testutil.ToFloat64(metrics.StubRequestsTotal.WithLabelValues(http.MethodGet, "/echo", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))

	after := testutil.ToFloat64(metrics.StubRequestsTotal.WithLabelValues(http.MethodGet, "/echo", "200"))
	assert.Equal(t, before+1, after)
}
