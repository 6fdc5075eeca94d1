package session

import (
	"net/http"

	"bitwise74/blog-api/app/request"
	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func SessionRevokeOthers(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet(middleware.UserIDKey).(string)
	tokenID := c.MustGet(middleware.TokenIDKey).(uint)

	n, err := d.Sessions.RevokeOthers(c.Request.Context(), userID, tokenID)
	if err != nil {
		request.InternalError(c, "Failed to revoke sessions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All other sessions have been revoked",
		"revoked": n,
	})
}
