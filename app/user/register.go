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

type registerBody struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,mailbox"`
	Password             string `json:"password" binding:"required,passwd"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if !request.Bind(c, &data) {
		return
	}

	user, err := d.Accounts.Register(c.Request.Context(), service.RegisterInput{
		Name:     data.Name,
		Email:    validators.NormalizeEmail(data.Email),
		Password: data.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			request.FieldError(c, "email", "The email has already been taken.")
			return
		}

		request.InternalError(c, "Failed to register user", err)
		return
	}

	zap.L().Debug("User registered", zap.String("userID", user.ID), zap.String("requestID", requestID))

	c.JSON(http.StatusOK, gin.H{
		"message": "Registration successful. Please check your email for verification.",
	})
}
