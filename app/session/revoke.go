package session

import (
	"errors"
	"net/http"

	"bitwise74/blog-api/app/request"
	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func SessionRevoke(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet(middleware.UserIDKey).(string)

	notFound := func() {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Session not found",
			"requestID": requestID,
		})
	}

	tokenID, ok := request.ParamID(c, "token_id")
	if !ok {
		notFound()
		return
	}

	if err := d.Sessions.Revoke(c.Request.Context(), userID, tokenID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			notFound()
			return
		}

		request.InternalError(c, "Failed to revoke session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session revoked successfully",
	})
}
