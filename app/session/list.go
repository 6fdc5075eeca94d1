package session

import (
	"net/http"

	"bitwise74/blog-api/app/request"
	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func SessionList(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet(middleware.UserIDKey).(string)
	tokenID := c.MustGet(middleware.TokenIDKey).(uint)

	sessions, err := d.Sessions.List(c.Request.Context(), userID, tokenID)
	if err != nil {
		request.InternalError(c, "Failed to list sessions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Sessions retrieved successfully",
		"sessions": sessions,
	})
}
