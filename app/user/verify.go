package user

import (
	"errors"
	"net/http"

	"bitwise74/blog-api/app/request"
	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/internal/service"

	"github.com/gin-gonic/gin"
)

func UserVerify(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	already, err := d.Verifier.Verify(c.Request.Context(), c.Param("id"), c.Param("hash"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"verified":  false,
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid verification link",
				"verified":  false,
				"requestID": requestID,
			})
		default:
			request.InternalError(c, "Failed to verify email", err)
		}
		return
	}

	msg := "Email verified successfully"
	if already {
		msg = "Email already verified"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  msg,
		"verified": true,
	})
}
