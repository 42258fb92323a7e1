package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/moodlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
	"github.com/yungbote/moodlog-backend/internal/services"
)

const SessionCookie = "moodlog_session"

type SessionMiddleware struct {
	log      *logger.Logger
	sessions services.SessionService
}

func NewSessionMiddleware(log *logger.Logger, sessions services.SessionService) *SessionMiddleware {
	return &SessionMiddleware{log: log.With("middleware", "SessionMiddleware"), sessions: sessions}
}

// Attach puts the session identity on the request context when a valid token
// is present. Missing or stale tokens leave the request anonymous.
func (sm *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}
		ctx, err := sm.sessions.SetContextFromToken(c.Request.Context(), token)
		if err != nil {
			sm.log.Debug("ignoring session token", "error", err)
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Require aborts with 401 unless Attach found a session.
func (sm *SessionMiddleware) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ctxutil.SessionUsername(c.Request.Context()) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "no active session", "code": "invalid_session"},
			})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if v, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}
