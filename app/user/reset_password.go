package user

import (
	"errors"
	"net/http"

	"bitwise74/blog-api/app/request"
	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

type resetBody struct {
	Email                string `json:"email" binding:"required,mailbox"`
	Token                string `json:"token" binding:"required"`
	Password             string `json:"password" binding:"required,passwd"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

func UserResetPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data resetBody
	if !request.Bind(c, &data) {
		return
	}

	err := d.Resets.Reset(c.Request.Context(), service.ResetInput{
		Email:                validators.NormalizeEmail(data.Email),
		Token:                data.Token,
		Password:             data.Password,
		PasswordConfirmation: data.PasswordConfirmation,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			request.FieldError(c, "password", "The password field confirmation does not match.")
		case errors.Is(err, service.ErrInvalidOrExpiredToken):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "This password reset token is invalid.",
				"requestID": requestID,
			})
		default:
			request.InternalError(c, "Failed to reset password", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset successfully",
	})
}
