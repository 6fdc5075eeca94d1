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

const defaultDeviceName = "web"

type loginBody struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	DeviceName string `json:"device_name" binding:"max=255"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if !request.Bind(c, &data) {
		return
	}

	device := data.DeviceName
	if device == "" {
		device = c.Request.UserAgent()
	}
	if device == "" || len(device) > 255 {
		device = defaultDeviceName
	}

	tok, _, err := d.Accounts.Login(c.Request.Context(), validators.NormalizeEmail(data.Email), data.Password, device)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid credentials",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrEmailNotVerified):
			c.JSON(http.StatusForbidden, gin.H{
				"error":     "Please verify your email to proceed further.",
				"requestID": requestID,
			})
		default:
			request.InternalError(c, "Failed to log in user", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   tok.PlainText,
		"message": "Logged in successfully",
	})
}
