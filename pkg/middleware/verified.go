package middleware

import (
	"net/http"

	"bitwise74/blog-api/internal/model"

	"github.com/gin-gonic/gin"
)

// NewVerifiedMiddleware rejects users that haven't verified their email yet.
// It must run after the auth middleware.
func NewVerifiedMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet(UserKey).(*model.User)
		if !ok || !user.IsVerified() {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":                 "Your email address is not verified.",
				"verification_required": true,
				"requestID":             c.MustGet("requestID").(string),
			})
			return
		}

		c.Next()
	}
}
