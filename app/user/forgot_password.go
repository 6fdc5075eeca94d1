package user

import (
	"errors"
	"net/http"

	"bitwise74/blog-api/app/request"
	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const resetSentMessage = "Password reset link sent to your email"

func UserForgotPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data emailBody
	if !request.Bind(c, &data) {
		return
	}

	err := d.Resets.Request(c.Request.Context(), validators.NormalizeEmail(data.Email))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			if d.RevealUnknownEmail {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "We can't find a user with that email address.",
					"requestID": requestID,
				})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"message": resetSentMessage,
			})
		case errors.Is(err, service.ErrResetThrottled):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":     "Please wait before retrying.",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrMailQueueFull), errors.Is(err, service.ErrMailQueueClosed):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     "Mail service is busy, please try again later",
				"requestID": requestID,
			})

			zap.L().Warn("Reset mail not queued", zap.Error(err), zap.String("requestID", requestID))
		default:
			request.InternalError(c, "Failed to request password reset", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": resetSentMessage,
	})
}
