package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/moodlog-backend/internal/http/response"
	"github.com/yungbote/moodlog-backend/internal/services"
)

type UserHandler struct {
	identities services.IdentityService
}

func NewUserHandler(identities services.IdentityService) *UserHandler {
	return &UserHandler{identities: identities}
}

// GET /api/users
func (uh *UserHandler) ListUsers(c *gin.Context) {
	users, err := uh.identities.ListRoster(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
