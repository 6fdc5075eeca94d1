package post

import (
	"net/http"

	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func PostShow(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet(middleware.UserIDKey).(string)

	id, ok := postID(c)
	if !ok {
		return
	}

	post, err := d.Posts.Get(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err, "Failed to fetch post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": post,
	})
}
