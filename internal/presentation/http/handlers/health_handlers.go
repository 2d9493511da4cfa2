package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
)

// Pinger is satisfied by the database handle.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandlers struct {
	db          Pinger
	perfTracker *performance.Tracker
	started     time.Time
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(db Pinger, perfTracker *performance.Tracker) *HealthHandlers {
	return &HealthHandlers{db: db, perfTracker: perfTracker, started: time.Now()}
}

// GetHealth reports database reachability and the performance summary.
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}
	if err := h.db.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = err.Error()
	}
	if h.perfTracker != nil {
		body["performance"] = h.perfTracker.Health()
	}
	c.JSON(status, body)
}
