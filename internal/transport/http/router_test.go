package httptransport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtidesk/internal/platform/metrics"
	"rtidesk/pkg/testutil"
)

type pingModule struct{}

func (pingModule) Register(r chi.Router) {
	r.Post("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func newRouter(checks ...HealthCheck) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(Config{
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		HealthChecks: checks,
		Modules:      []Registrar{pingModule{}},
	})
}

func TestHealthz(t *testing.T) {
	t.Run("ok without checks", func(t *testing.T) {
		rr := testutil.Serve(newRouter(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		body := testutil.Decode[healthResponse](t, rr)
		assert.Equal(t, "ok", body.Status)
	})

	t.Run("failing dependency is 503", func(t *testing.T) {
		router := newRouter(
			HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
			HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("down") }},
		)
		rr := testutil.Serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		body := testutil.Decode[healthResponse](t, rr)
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, map[string]string{"postgres": "ok", "redis": "unavailable"}, body.Checks)
	})
}

func TestMiddlewareChain(t *testing.T) {
	router := newRouter()

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rr := testutil.Serve(router, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
	})

	t.Run("non-json body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader("a=b"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := testutil.Serve(router, req)
		testutil.AssertError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("panic becomes internal error", func(t *testing.T) {
		rr := testutil.Serve(router, httptest.NewRequest(http.MethodGet, "/panic", nil))
		testutil.AssertError(t, rr, http.StatusInternalServerError, "internal_error")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router := newRouter()
	testutil.Serve(router, httptest.NewRequest(http.MethodPost, "/ping", nil))

	rr := testutil.Serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `rtidesk_http_requests_total{method="POST",route="/ping",status="204"} 1`)
}
