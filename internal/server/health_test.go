package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHealth(t *testing.T, h *HealthChecker, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := gin.New()
	h.RegisterHealthEndpoints(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealth_Status(t *testing.T) {
	rec, body := serveHealth(t, NewHealthChecker(nil, "test"), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Server running", body["message"])
}

func TestHealth_Liveness(t *testing.T) {
	h := NewHealthChecker(nil, "test")
	h.SetReady(false)

	// Liveness ignores readiness.
	rec, body := serveHealth(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestHealth_Readiness(t *testing.T) {
	sc := newTestServerContext(t)
	h := NewHealthChecker(sc, "test")
	assert.True(t, h.IsReady())

	rec, body := serveHealth(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	h.SetReady(false)
	rec, body = serveHealth(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", body["checks"].(map[string]any)["ready"])

	h.SetReady(true)
	require.NoError(t, sc.Shutdown())
	rec, body = serveHealth(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "shutting down", body["checks"].(map[string]any)["shutdown"])
}

func TestHealth_Detailed(t *testing.T) {
	h := NewHealthChecker(nil, "v1.2.3")

	rec, body := serveHealth(t, h, "/healthz/detailed")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "v1.2.3", body["version"])
	assert.NotEmpty(t, body["uptime"])

	h.SetReady(false)
	rec, body = serveHealth(t, h, "/healthz/detailed")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", body["status"])
}
