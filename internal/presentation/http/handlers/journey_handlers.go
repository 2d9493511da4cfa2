package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/domain/entities/navigation"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
	"github.com/fundroad/fundroad-go/internal/presentation/http/middleware"
)

// CompletionRequest targets a step, or one of its substeps when SubStep is set.
type CompletionRequest struct {
	StepID  int    `json:"stepId" binding:"required"`
	SubStep string `json:"substep"`
}

// SetCompletionRequest sets the completion flag explicitly.
type SetCompletionRequest struct {
	StepID    int    `json:"stepId" binding:"required"`
	SubStep   string `json:"substep"`
	Completed *bool  `json:"completed" binding:"required"`
}

// JourneyHandlers serve the journey content, the reconciled view and the
// completion toggles.
type JourneyHandlers struct {
	journeyService    *services.JourneyService
	navigationService *services.NavigationService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewJourneyHandlers creates journey handlers with injected dependencies
func NewJourneyHandlers(journeyService *services.JourneyService, navigationService *services.NavigationService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *JourneyHandlers {
	return &JourneyHandlers{
		journeyService:    journeyService,
		navigationService: navigationService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// GetSteps returns the static journey without any user overlay.
func (h *JourneyHandlers) GetSteps(c *gin.Context) {
	steps := h.journeyService.StaticSteps()
	c.JSON(http.StatusOK, gin.H{
		"steps": steps,
		"count": len(steps),
	})
}

// GetView returns the journey reconciled with the caller's completion.
// Anonymous callers get the static defaults.
func (h *JourneyHandlers) GetView(c *gin.Context) {
	start := time.Now()
	view := h.journeyService.LoadView(c.Request.Context(), middleware.GetUserID(c))
	h.logger.Content().Debug("Journey view served", "percentage", view.Progress.Percentage, "duration", time.Since(start))
	c.JSON(http.StatusOK, view)
}

// EvaluateTab runs the session's tab machine on a snapshot of its signals.
func (h *JourneyHandlers) EvaluateTab(c *gin.Context) {
	var snap navigation.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if snap.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	state := h.navigationService.EvaluateTab(middleware.GetSessionID(c), snap)
	c.JSON(http.StatusOK, state)
}

// ChangeTab applies a tab click to the session's tab machine.
func (h *JourneyHandlers) ChangeTab(c *gin.Context) {
	var req struct {
		Tab string `json:"tab" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	state := h.navigationService.ChangeTab(middleware.GetSessionID(c), navigation.Tab(req.Tab))
	c.JSON(http.StatusOK, state)
}

// Toggle flips the completion of a step or substep and returns the new value.
func (h *JourneyHandlers) Toggle(c *gin.Context) {
	start := time.Now()
	var req CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	var completed bool
	var err error
	if req.SubStep == "" {
		completed, err = h.journeyService.ToggleStepCompletion(c.Request.Context(), userID, req.StepID)
	} else {
		completed, err = h.journeyService.ToggleSubStepCompletion(c.Request.Context(), userID, req.StepID, req.SubStep)
	}
	if err != nil {
		h.logger.Content().Warn("Completion toggle failed", "stepId", req.StepID, "substep", req.SubStep, "error", err.Error())
		respondError(c, err)
		return
	}

	h.logger.Content().Info("Completion toggled", "stepId", req.StepID, "substep", req.SubStep, "completed", completed, "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"stepId":    req.StepID,
		"substep":   req.SubStep,
		"completed": completed,
	})
}

// SetCompletion stores an explicit completion value.
func (h *JourneyHandlers) SetCompletion(c *gin.Context) {
	var req SetCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	var err error
	if req.SubStep == "" {
		err = h.journeyService.SetStepCompletion(c.Request.Context(), userID, req.StepID, *req.Completed)
	} else {
		err = h.journeyService.SetSubStepCompletion(c.Request.Context(), userID, req.StepID, req.SubStep, *req.Completed)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stepId":    req.StepID,
		"substep":   req.SubStep,
		"completed": *req.Completed,
	})
}
