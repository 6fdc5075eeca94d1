package post

import (
	"net/http"

	"bitwise74/blog-api/app/request"
	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type storeBody struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

func PostStore(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet(middleware.UserIDKey).(string)

	var data storeBody
	if !request.Bind(c, &data) {
		return
	}

	post, err := d.Posts.Create(c.Request.Context(), userID, service.PostInput{
		Title:   data.Title,
		Content: data.Content,
	})
	if err != nil {
		writeError(c, err, "Failed to create post")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"id":      post.ID,
	})
}
