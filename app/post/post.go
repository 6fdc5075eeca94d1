// Package post contains the blog post endpoints. Every handler expects the
// auth and verified middleware to have run.
package post

import (
	"errors"
	"net/http"

	"bitwise74/blog-api/app/request"
	"bitwise74/blog-api/internal/service"

	"github.com/gin-gonic/gin"
)

// writeError maps the post store's errors to responses
func writeError(c *gin.Context, err error, msg string) {
	requestID := c.MustGet("requestID").(string)

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Post not found",
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Unauthorized",
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrCannotLikeOwnPost):
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "You cannot like your own post",
			"requestID": requestID,
		})
	default:
		request.InternalError(c, msg, err)
	}
}

func postID(c *gin.Context) (uint, bool) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		writeError(c, service.ErrNotFound, "")
	}
	return id, ok
}
