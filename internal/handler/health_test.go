package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/memo-service/internal/handler"
	"github.com/maxviazov/memo-service/internal/repository"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func newEngine(p handler.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// nil service: only health and docs routes are exercised here
	handler.Register(r, p, nil)
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealthProbes(t *testing.T) {
	down := errors.New("db down")
	cases := []struct {
		name string
		err  error
		path string
		want int
	}{
		{"api ready", nil, handler.APIV1Prefix + "/health/ready", http.StatusOK},
		{"api ready down", down, handler.APIV1Prefix + "/health/ready", http.StatusServiceUnavailable},
		{"api live ignores db", down, handler.APIV1Prefix + "/health/live", http.StatusOK},
		{"root live", nil, "/live", http.StatusOK},
		{"root ready", nil, "/ready", http.StatusOK},
		{"root ready down", down, "/ready", http.StatusServiceUnavailable},
		{"unknown", nil, "/no-such", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(newEngine(stubPinger{err: tc.err}), http.MethodGet, tc.path)
			assert.Equal(t, tc.want, w.Code, "body=%s", w.Body.String())
		})
	}
}

// deadlinePinger records whether the ping carried a deadline.
type deadlinePinger struct{ hadDeadline bool }

func (p *deadlinePinger) Ping(ctx context.Context) error {
	_, p.hadDeadline = ctx.Deadline()
	return nil
}

func TestReadiness_ErrorPayload(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"plain error", errors.New("connection refused")},
		{"already unavailable", repository.Unavailable(errors.New("too many connections"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(newEngine(stubPinger{err: tc.err}), http.MethodGet, handler.APIV1Prefix+"/health/ready")
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "unavailable", body["error"])
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestReadiness_PingHasDeadline(t *testing.T) {
	p := &deadlinePinger{}
	w := serve(newEngine(p), http.MethodGet, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, p.hadDeadline)
}

func TestReadiness_MethodNotAllowed(t *testing.T) {
	w := serve(newEngine(stubPinger{}), http.MethodPost, handler.APIV1Prefix+"/health/ready")
	// Gin by default returns 404 for unknown method if route only registered for GET.
	assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, w.Code)
}

func TestDocs(t *testing.T) {
	r := newEngine(stubPinger{})

	w := serve(r, http.MethodGet, "/openapi.yaml")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = serve(r, http.MethodGet, "/docs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
