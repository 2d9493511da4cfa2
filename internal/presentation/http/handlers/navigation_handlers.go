package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/presentation/http/middleware"
)

// ReturnPathRequest saves where the user should come back to.
type ReturnPathRequest struct {
	Path string `json:"path" binding:"required"`
}

// SaveResultRequest records the outcome of a client side save.
type SaveResultRequest struct {
	Success *bool `json:"success" binding:"required"`
	// At is a Unix millisecond timestamp; zero means now.
	At int64 `json:"at"`
}

// NavigationHandlers expose the session's return path tracker. Without a
// session id every call succeeds and nothing is remembered.
type NavigationHandlers struct {
	navigationService *services.NavigationService
	logger            *logging.ChanneledLogger
}

// NewNavigationHandlers creates navigation handlers with injected dependencies
func NewNavigationHandlers(navigationService *services.NavigationService, logger *logging.ChanneledLogger) *NavigationHandlers {
	return &NavigationHandlers{navigationService: navigationService, logger: logger}
}

// GetReturnPath handles GET /api/v1/navigation/return-path
func (h *NavigationHandlers) GetReturnPath(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"path": h.navigationService.ReturnPath(middleware.GetSessionID(c))})
}

// SaveReturnPath handles PUT /api/v1/navigation/return-path
func (h *NavigationHandlers) SaveReturnPath(c *gin.Context) {
	var req ReturnPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := h.navigationService.SaveReturnPath(middleware.GetSessionID(c), req.Path); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": req.Path})
}

// ClearReturnPath handles DELETE /api/v1/navigation/return-path
func (h *NavigationHandlers) ClearReturnPath(c *gin.Context) {
	h.navigationService.ClearReturnPath(middleware.GetSessionID(c))
	c.Status(http.StatusNoContent)
}

// TakeReturnPath returns the saved path and clears it, so a second call
// gets null.
func (h *NavigationHandlers) TakeReturnPath(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"path": h.navigationService.TakeReturnPath(middleware.GetSessionID(c))})
}

// RecordSaveResult handles POST /api/v1/navigation/save-result
func (h *NavigationHandlers) RecordSaveResult(c *gin.Context) {
	var req SaveResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	at := time.Now()
	if req.At > 0 {
		at = time.UnixMilli(req.At)
	}

	sessionID := middleware.GetSessionID(c)
	h.navigationService.RecordSaveResult(sessionID, *req.Success, at)
	c.JSON(http.StatusOK, h.navigationService.LastSave(sessionID))
}

// GetSaveResult handles GET /api/v1/navigation/save-result
func (h *NavigationHandlers) GetSaveResult(c *gin.Context) {
	c.JSON(http.StatusOK, h.navigationService.LastSave(middleware.GetSessionID(c)))
}
