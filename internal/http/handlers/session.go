package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/moodlog-backend/internal/http/middleware"
	"github.com/yungbote/moodlog-backend/internal/http/response"
	"github.com/yungbote/moodlog-backend/internal/platform/apierr"
	"github.com/yungbote/moodlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/moodlog-backend/internal/services"
)

type SessionHandler struct {
	sessions     services.SessionService
	identities   services.IdentityService
	secureCookie bool
}

func NewSessionHandler(sessions services.SessionService, identities services.IdentityService, secureCookie bool) *SessionHandler {
	return &SessionHandler{sessions: sessions, identities: identities, secureCookie: secureCookie}
}

// POST /api/session
// body: { "username": "ana" }
func (sh *SessionHandler) Create(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.InvalidInput(err))
		return
	}
	sess, err := sh.sessions.Start(c.Request.Context(), req.Username)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, sess.Token, int(sh.sessions.TTL().Seconds()), "/", "", sh.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// GET /api/session
func (sh *SessionHandler) Get(c *gin.Context) {
	username := ctxutil.SessionUsername(c.Request.Context())
	if username == "" {
		response.RespondAPIError(c, apierr.InvalidSession(errors.New("no active session")))
		return
	}
	u, err := sh.identities.Resolve(c.Request.Context(), username)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// DELETE /api/session
func (sh *SessionHandler) Delete(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", sh.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
