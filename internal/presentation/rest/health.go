package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler provides HTTP health check endpoints for the risk service.
type HealthHandler struct {
	startTime time.Time
	checks    map[string]string
	service   string
}

// NewHealthHandler creates a new health check handler. checks are reported
// verbatim by the readiness check.
func NewHealthHandler(service string, checks map[string]string) *HealthHandler {
	return &HealthHandler{
		service:   service,
		checks:    checks,
		startTime: time.Now(),
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// Healthz handles liveness requests.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz handles readiness check requests. The handler only exists once the
// classifier is ready, so it always reports ready.
func (h *HealthHandler) Readyz(c *gin.Context) {
	c.JSON(http.StatusOK, ReadinessResponse{
		Status:  "ready",
		Service: h.service,
		Checks:  h.checks,
	})
}
