package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/translation"
)

// TranslateRequest is the translation function payload.
type TranslateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang,omitempty"`
}

// FunctionHandlers serve the edge functions: translation and contact email.
type FunctionHandlers struct {
	translationService *services.TranslationService
	contactService     *services.ContactService
	logger             *logging.ChanneledLogger
}

// NewFunctionHandlers creates edge function handlers with injected dependencies
func NewFunctionHandlers(translationService *services.TranslationService, contactService *services.ContactService, logger *logging.ChanneledLogger) *FunctionHandlers {
	return &FunctionHandlers{
		translationService: translationService,
		contactService:     contactService,
		logger:             logger,
	}
}

// Translate always answers with a translatedText. Failures carry the
// original text with status 500; an empty text is a 400 with an empty result.
func (h *FunctionHandlers) Translate(c *gin.Context) {
	start := time.Now()
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"translatedText": "", "error": "invalid request body"})
		return
	}

	translated, err := h.translationService.Translate(c.Request.Context(), translation.Request{
		Text:       req.Text,
		TargetLang: req.TargetLang,
		SourceLang: req.SourceLang,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrEmptyText) || errors.Is(err, services.ErrMissingTarget) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"translatedText": translated, "error": err.Error()})
		return
	}

	h.logger.Functions().Debug("Translate request completed", "target", req.TargetLang, "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{"translatedText": translated})
}

// Contact relays the contact form by email.
func (h *FunctionHandlers) Contact(c *gin.Context) {
	var req services.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	if err := h.contactService.Send(c.Request.Context(), req); err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
