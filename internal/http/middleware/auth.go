// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides bearer-token authentication for venue-scoped routes.
// Token parsing is injected as a function so the middleware stays decoupled
// from the signing implementation.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenParser validates an access token and returns the venue ID it was
// issued for. Implementations return an error for expired, malformed, or
// otherwise invalid tokens.
type TokenParser func(token string) (venueID string, err error)

// VenueID returns the authenticated venue ID stored in the Gin context by
// RequireVenue. The second return value indicates presence.
func VenueID(c *gin.Context) (string, bool) {
	v, ok := c.Get(venueIDKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// RequireVenue returns a Gin middleware that enforces a valid
// "Authorization: Bearer <token>" header on the route group it guards.
//
// On success the venue ID is stored in the Gin context (key "venueID") for
// handlers, the access logger, and the rate limiter. On failure the request
// is aborted with a 401 and the standard error envelope.
func RequireVenue(parse TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if raw == "" || !strings.HasPrefix(raw, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "missing bearer token",
			})
			return
		}

		venueID, err := parse(strings.TrimSpace(raw[len(prefix):]))
		if err != nil || venueID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "invalid or expired token",
			})
			return
		}

		c.Set(venueIDKey, venueID)
		c.Next()
	}
}
