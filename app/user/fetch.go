package user

import (
	"net/http"

	"bitwise74/blog-api/internal/model"
	"bitwise74/blog-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// UserFetch returns the authenticated user
func UserFetch(c *gin.Context) {
	user := c.MustGet(middleware.UserKey).(*model.User)

	c.JSON(http.StatusOK, gin.H{
		"id":                user.ID,
		"name":              user.Name,
		"email":             user.Email,
		"email_verified_at": user.EmailVerifiedAt,
		"created_at":        user.CreatedAt,
	})
}
