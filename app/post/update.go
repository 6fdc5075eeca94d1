package post

import (
	"net/http"

	"bitwise74/blog-api/app/request"
	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Fields left out keep their current value
type updateBody struct {
	Title   string `json:"title" binding:"max=255"`
	Content string `json:"content"`
}

func PostUpdate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet(middleware.UserIDKey).(string)

	id, ok := postID(c)
	if !ok {
		return
	}

	var data updateBody
	if !request.Bind(c, &data) {
		return
	}

	err := d.Posts.Update(c.Request.Context(), userID, id, service.PostInput{
		Title:   data.Title,
		Content: data.Content,
	})
	if err != nil {
		writeError(c, err, "Failed to update post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
	})
}
