package server

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// HealthChecker serves the voice platform's /health check and the
// Kubernetes liveness and readiness probes.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
	version       string
}

// NewHealthChecker creates a HealthChecker that starts out ready. sc may be
// nil in tests.
func NewHealthChecker(sc *ServerContext, version string) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
		version:       version,
	}
	h.ready.Store(true)
	return h
}

// SetReady flips readiness. Serve clears it before draining connections.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the server accepts traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version,omitempty"`
}

// state returns the overall status and the per-check results.
func (h *HealthChecker) state() (string, map[string]string) {
	checks := map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK}
	status := healthStatusOK

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}
	if h.serverContext != nil && h.serverContext.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		if status == healthStatusOK {
			status = healthStatusShuttingDown
		}
	}
	return status, checks
}

func httpStatus(status string) int {
	if status == healthStatusOK {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// Status answers GET /health.
func (h *HealthChecker) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "Server running"})
}

// Liveness answers GET /healthz. It succeeds while the process can serve.
func (h *HealthChecker) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: healthStatusOK})
}

// Readiness answers GET /readyz. It fails once the server is marked not
// ready or begins shutting down.
func (h *HealthChecker) Readiness(c *gin.Context) {
	status, checks := h.state()
	if status != healthStatusOK {
		status = healthStatusNotReady
	}
	c.JSON(httpStatus(status), HealthResponse{Status: status, Checks: checks})
}

// Detailed answers GET /healthz/detailed.
func (h *HealthChecker) Detailed(c *gin.Context) {
	status, _ := h.state()
	c.JSON(httpStatus(status), DetailedHealthResponse{
		Status:  status,
		Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
		Version: h.version,
	})
}

// RegisterHealthEndpoints registers the health endpoints on r.
func (h *HealthChecker) RegisterHealthEndpoints(r gin.IRoutes) {
	r.GET("/health", h.Status)
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	r.GET("/healthz/detailed", h.Detailed)
}
