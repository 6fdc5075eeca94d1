package user

import (
	"net/http"

	"bitwise74/blog-api/app/request"
	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// UserLogout revokes the token the request was made with
func UserLogout(c *gin.Context, d *internal.Deps) {
	tokenID := c.MustGet(middleware.TokenIDKey).(uint)

	if err := d.Tokens.Revoke(c.Request.Context(), tokenID); err != nil {
		request.InternalError(c, "Failed to revoke token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
