package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/monitoring"
	"github.com/carehub/storefront/pkg/response"
)

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	startedAt time.Time
	now       func() time.Time
	probes    *monitoring.HealthManager
}

// NewHealthHandler constructs a handler. probes may be nil, in which case
// readiness always reports up.
func NewHealthHandler(startedAt time.Time, probes *monitoring.HealthManager) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, now: time.Now, probes: probes}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	now := h.now()
	response.SuccessWithMessage(c, http.StatusOK, "Storefront API is running", gin.H{
		"status":    "ok",
		"timestamp": now.UTC().Format(time.RFC3339),
		"uptime":    now.Sub(h.startedAt).Seconds(),
	})
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.probes == nil {
		response.Success(c, http.StatusOK, monitoring.HealthReport{Success: true, Status: monitoring.StatusUp})
		return
	}

	report := h.probes.Evaluate(requestContext(c))
	status := http.StatusOK
	if report.Status == monitoring.StatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response.Response{Success: report.Success, Data: report})
}
