package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/domain/user"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
)

const (
	userSessionKey = "userSession"
	userIDKey      = "userId"
)

// TokenValidator turns a bearer token into a session.
type TokenValidator interface {
	ValidateToken(token string) (*user.Session, error)
}

// OptionalAuth attaches the session of a valid bearer token. A missing or
// invalid token leaves the request anonymous.
func OptionalAuth(validator TokenValidator, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		session, err := validator.ValidateToken(token)
		if err != nil {
			logger.Auth().Debug("Ignoring invalid bearer token", "path", c.Request.URL.Path, "error", err.Error())
			c.Next()
			return
		}

		c.Set(userSessionKey, session)
		c.Set(userIDKey, session.UserID)
		c.Next()
	}
}

// RequireAuth rejects requests OptionalAuth left anonymous.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user id, empty for anonymous requests.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetUserSession returns the authenticated session.
func GetUserSession(c *gin.Context) (*user.Session, bool) {
	value, exists := c.Get(userSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*user.Session)
	return session, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return c.Query("token")
}
