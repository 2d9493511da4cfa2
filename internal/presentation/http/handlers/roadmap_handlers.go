package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
	"github.com/fundroad/fundroad-go/internal/presentation/http/middleware"
)

// RoadmapBackPath is where the not found view sends the user back to.
const RoadmapBackPath = "/roadmap"

// RoadmapHandlers serve the step view routes and their legacy redirects.
type RoadmapHandlers struct {
	roadmapService *services.RoadmapService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewRoadmapHandlers creates roadmap page handlers with injected dependencies
func NewRoadmapHandlers(roadmapService *services.RoadmapService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RoadmapHandlers {
	return &RoadmapHandlers{
		roadmapService: roadmapService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetStep handles GET /roadmap/step/:stepId and /roadmap/step/:stepId/:substep.
func (h *RoadmapHandlers) GetStep(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperationWithContext(c.Request.Context(), "journey:step_view_request", middleware.GetUserID(c))
	defer marker.Complete()

	stepID, err := strconv.Atoi(c.Param("stepId"))
	if err != nil {
		h.notFound(c, "invalid step id")
		return
	}

	var resetAt int64
	if raw := c.Query("resetAt"); raw != "" {
		resetAt, _ = strconv.ParseInt(raw, 10, 64)
	}

	view, err := h.roadmapService.StepView(c.Request.Context(), services.StepRequest{
		UserID:    middleware.GetUserID(c),
		SessionID: middleware.GetSessionID(c),
		StepID:    stepID,
		SubStep:   c.Param("substep"),
		Path:      c.Request.URL.Path,
		Tab:       c.Query("tab"),
		Resource:  c.Query("resource"),
		ResetAt:   resetAt,
	})
	if err != nil {
		if errors.Is(err, journey.ErrStepNotFound) || errors.Is(err, journey.ErrSubStepNotFound) {
			h.notFound(c, err.Error())
			return
		}
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Content().Debug("Step view served", "stepId", stepID, "tab", view.ActiveTab, "duration", time.Since(start))
	c.JSON(http.StatusOK, view)
}

// RedirectLegacy answers the legacy step routes with a permanent redirect to
// /roadmap/step/:stepId[/:substep]. The query string is carried over.
func (h *RoadmapHandlers) RedirectLegacy(c *gin.Context) {
	target := h.roadmapService.LegacyPath(c.Param("stepId"), c.Param("substep"), c.Request.URL.RawQuery)
	h.logger.Content().Debug("Redirecting legacy step route", "from", c.Request.URL.Path, "to", target)
	c.Redirect(http.StatusMovedPermanently, target)
}

func (h *RoadmapHandlers) notFound(c *gin.Context, reason string) {
	h.logger.Content().Debug("Step route not found", "path", c.Request.URL.Path, "reason", reason)
	c.JSON(http.StatusNotFound, gin.H{"error": "step not found", "back": RoadmapBackPath})
}
