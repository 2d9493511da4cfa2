// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/metrics"
)

const (
	RequestIDHeader = "X-Request-ID"
	SessionHeader   = "X-FundRoad-Session-ID"

	requestIDKey = "requestId"
	sessionIDKey = "sessionId"
)

// maxClientIDLength bounds client supplied request and session ids.
const maxClientIDLength = 128

// RequestID echoes the caller's X-Request-ID or assigns a fresh UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > maxClientIDLength {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Session reads the navigation session id from X-FundRoad-Session-ID.
// Requests without one get no session-scoped state.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(SessionHeader))
		if id == "" {
			id = c.Query("sessionId") // websocket upgrades cannot set headers
		}
		if len(id) > maxClientIDLength {
			id = ""
		}
		if id != "" {
			c.Set(sessionIDKey, id)
		}
		c.Next()
	}
}

// Metrics records method, matched route, status and latency of every request.
func Metrics(registry *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		registry.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// GetSessionID returns the navigation session id, empty when absent.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
