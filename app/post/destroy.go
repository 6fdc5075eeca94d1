package post

import (
	"net/http"

	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func PostDestroy(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet(middleware.UserIDKey).(string)

	id, ok := postID(c)
	if !ok {
		return
	}

	if err := d.Posts.Delete(c.Request.Context(), userID, id); err != nil {
		writeError(c, err, "Failed to delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post deleted successfully",
	})
}
