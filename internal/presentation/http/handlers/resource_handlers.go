package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/entities/resources"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
	"github.com/fundroad/fundroad-go/internal/presentation/http/middleware"
)

// ResourceHandlers serve the user's resource forms and their attachments.
type ResourceHandlers struct {
	resourceService   *services.ResourceService
	attachmentService *services.AttachmentService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewResourceHandlers creates resource handlers with injected dependencies
func NewResourceHandlers(resourceService *services.ResourceService, attachmentService *services.AttachmentService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ResourceHandlers {
	return &ResourceHandlers{
		resourceService:   resourceService,
		attachmentService: attachmentService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// resourceRef reads /:stepId/:substep/:type. A non numeric step id is a
// missing step.
func resourceRef(c *gin.Context) (services.ResourceRef, error) {
	stepID, err := strconv.Atoi(c.Param("stepId"))
	if err != nil {
		return services.ResourceRef{}, journey.ErrStepNotFound
	}
	return services.ResourceRef{
		UserID:       middleware.GetUserID(c),
		StepID:       stepID,
		SubStep:      c.Param("substep"),
		ResourceType: c.Param("type"),
	}, nil
}

// SaveResource upserts the envelope in the request body.
func (h *ResourceHandlers) SaveResource(c *gin.Context) {
	start := time.Now()
	ref, err := resourceRef(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var envelope resources.Envelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	resource, err := h.resourceService.Save(c.Request.Context(), middleware.GetSessionID(c), ref, envelope)
	if err != nil {
		h.logger.Content().Warn("Resource save failed", "stepId", ref.StepID, "type", ref.ResourceType, "error", err.Error())
		respondError(c, err)
		return
	}

	h.logger.Content().Info("Resource saved", "stepId", ref.StepID, "type", ref.ResourceType, "duration", time.Since(start))
	c.JSON(http.StatusOK, resource)
}

// GetResource handles GET /api/v1/resources/:stepId/:substep/:type
func (h *ResourceHandlers) GetResource(c *gin.Context) {
	ref, err := resourceRef(c)
	if err != nil {
		respondError(c, err)
		return
	}

	resource, err := h.resourceService.Get(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

// ListResources handles GET /api/v1/resources
func (h *ResourceHandlers) ListResources(c *gin.Context) {
	list, err := h.resourceService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resources": list,
		"count":     len(list),
	})
}

// UploadAttachment stores the multipart "file" field.
func (h *ResourceHandlers) UploadAttachment(c *gin.Context) {
	start := time.Now()
	ref, err := resourceRef(c)
	if err != nil {
		respondError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "details": err.Error()})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload", "details": err.Error()})
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(c.Request.Context(), ref, services.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.logger.Storage().Warn("Attachment upload failed", "stepId", ref.StepID, "type", ref.ResourceType, "error", err.Error())
		respondError(c, err)
		return
	}

	h.logger.Storage().Info("Attachment upload completed", "attachmentId", attachment.ID, "duration", time.Since(start))
	c.JSON(http.StatusCreated, attachment)
}

// ListAttachments handles GET /api/v1/resources/:stepId/:substep/:type/attachments
func (h *ResourceHandlers) ListAttachments(c *gin.Context) {
	ref, err := resourceRef(c)
	if err != nil {
		respondError(c, err)
		return
	}

	list, err := h.attachmentService.List(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attachments": list,
		"count":       len(list),
	})
}
