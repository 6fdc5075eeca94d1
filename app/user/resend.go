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

type emailBody struct {
	Email string `json:"email" binding:"required,mailbox"`
}

const resendSentMessage = "Verification link sent successfully"

func UserResendVerification(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data emailBody
	if !request.Bind(c, &data) {
		return
	}

	sent, err := d.Verifier.SendTo(c.Request.Context(), validators.NormalizeEmail(data.Email))
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

			// Same answer as a real send so the endpoint can't be used to probe for accounts
			c.JSON(http.StatusOK, gin.H{
				"message": resendSentMessage,
			})
		case errors.Is(err, service.ErrMailQueueFull), errors.Is(err, service.ErrMailQueueClosed):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     "Mail service is busy, please try again later",
				"requestID": requestID,
			})

			zap.L().Warn("Verification mail not queued", zap.Error(err), zap.String("requestID", requestID))
		default:
			request.InternalError(c, "Failed to resend verification mail", err)
		}
		return
	}

	if !sent {
		c.JSON(http.StatusOK, gin.H{
			"message": "Email already verified",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": resendSentMessage,
	})
}
