package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neuronalfit/assessment-backend/internal/monitor"
	"github.com/neuronalfit/assessment-backend/internal/response"
)

// SystemHandler reports the health of the backend's dependencies.
type SystemHandler struct {
	monitor   *monitor.Monitor
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(m *monitor.Monitor) *SystemHandler {
	return &SystemHandler{monitor: m, startTime: time.Now()}
}

// GetStatus godoc
// GET /api/v1/admin/system/status
// Returns the diagnostic of the latest scheduled round with its recommendations.
// A round is run only when none has completed yet.
func (h *SystemHandler) GetStatus(c *gin.Context) {
	d := h.monitor.Diagnostic()
	if d.Status.LastCheck.IsZero() {
		h.monitor.CheckNow(c.Request.Context())
		d = h.monitor.Diagnostic()
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":          d.Status,
		"recommendations": d.Recommendations,
		"uptime_seconds":  int64(time.Since(h.startTime).Seconds()),
	})
}

// Health godoc
// GET /health
// Liveness probe backed by the latest monitor snapshot; answers 503 when a dependency is down.
func (h *SystemHandler) Health(c *gin.Context) {
	st := h.monitor.Status()
	if st.Health == monitor.HealthDown {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": st.Health})
}
