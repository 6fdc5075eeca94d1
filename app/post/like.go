package post

import (
	"net/http"

	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// PostLike likes the post, or takes the like back if it was already given
func PostLike(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet(middleware.UserIDKey).(string)

	id, ok := postID(c)
	if !ok {
		return
	}

	liked, count, err := d.Posts.ToggleLike(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err, "Failed to toggle like")
		return
	}

	msg := "Post unliked successfully"
	if liked {
		msg = "Post liked successfully"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     msg,
		"liked":       liked,
		"likes_count": count,
	})
}
