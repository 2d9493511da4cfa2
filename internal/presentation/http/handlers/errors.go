// Package handlers provides the HTTP handlers of the Fund Road API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/entities/resources"
	"github.com/fundroad/fundroad-go/internal/domain/user"
	"github.com/fundroad/fundroad-go/internal/infrastructure/email"
	"github.com/fundroad/fundroad-go/internal/infrastructure/security"
	"github.com/fundroad/fundroad-go/internal/infrastructure/storage"
	"github.com/fundroad/fundroad-go/internal/infrastructure/translation"
)

// statusFor maps service errors onto HTTP status codes. Anything unknown is
// a persistence or upstream failure and the client may retry.
func statusFor(err error) int {
	switch {
	case errors.Is(err, journey.ErrStepNotFound),
		errors.Is(err, journey.ErrSubStepNotFound),
		errors.Is(err, resources.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrToggleInFlight),
		errors.Is(err, user.ErrEmailAlreadyTaken):
		return http.StatusConflict
	case errors.Is(err, resources.ErrInvalidEnvelope),
		errors.Is(err, services.ErrInvalidContact),
		errors.Is(err, services.ErrInvalidReturnPath),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrEmptyAttachment),
		errors.Is(err, services.ErrEmptyText),
		errors.Is(err, services.ErrMissingTarget),
		errors.Is(err, services.ErrUnknownLiveMessage):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, services.ErrSignInRequired):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrAttachmentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrNotConfigured),
		errors.Is(err, email.ErrNotConfigured),
		errors.Is(err, translation.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	if status >= http.StatusInternalServerError {
		body["retryable"] = true
	}
	c.JSON(status, body)
}
