package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "radblog/internal/errors"
)

// AdminListUsers is reachable only through the ADMIN role gate.
func (h HandlerSet) AdminListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, apperrors.Store(err))
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, user := range users {
		items = append(items, toUserResponse(user))
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
