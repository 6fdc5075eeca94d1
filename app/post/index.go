package post

import (
	"net/http"
	"strconv"

	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func PostIndex(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet(middleware.UserIDKey).(string)

	myPosts, _ := strconv.ParseBool(c.Query("my_posts"))

	posts, err := d.Posts.List(c.Request.Context(), userID, service.ListOptions{
		MyPosts: myPosts || c.Query("my_posts") == "on",
		Sort:    c.Query("sort"),
	})
	if err != nil {
		writeError(c, err, "Failed to list posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": posts,
	})
}
