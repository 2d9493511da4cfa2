package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/domain/user"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/presentation/http/middleware"
)

// SignupRequest creates an account.
type SignupRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

// LoginRequest exchanges credentials for a session token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger) *AuthHandlers {
	return &AuthHandlers{authService: authService, logger: logger}
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSession returns the account behind the bearer token.
func (h *AuthHandlers) GetSession(c *gin.Context) {
	session, ok := middleware.GetUserSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	account, err := h.authService.CurrentUser(c.Request.Context(), session)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      account,
		"expiresAt": session.ExpiresAt,
	})
}
