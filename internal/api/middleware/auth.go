package middleware

import (
	"errors"
	"strings"

	"timeclock/internal/logger"
	"timeclock/internal/models"
	"timeclock/internal/services"

	"github.com/gin-gonic/gin"
)

// Keys stored on the gin context.
const (
	ContextSession = "session"
	ContextActor   = "actor"
)

// SessionMiddleware attaches the caller's session, if any. Requests without
// a valid session continue anonymously; RequireAdmin decides what to refuse.
func SessionMiddleware(authService *services.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		session, err := authService.GetSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidSession) {
				logger.Error("session lookup failed", "err", err)
			}
			c.Next()
			return
		}

		c.Set(ContextSession, session)
		c.Set(ContextActor, session.Subject)
		c.Next()
	}
}

// sessionToken reads the cookie first, then a "Bearer <token>" header.
func sessionToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireAdmin rejects requests without an admin session.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.JSON(403, gin.H{"error": "Admin privileges required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// IsAdmin reports whether the request carries an admin session.
func IsAdmin(c *gin.Context) bool {
	value, ok := c.Get(ContextSession)
	if !ok {
		return false
	}
	session, ok := value.(*models.Session)
	return ok && session.Admin
}
