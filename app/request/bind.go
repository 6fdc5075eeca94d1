// Package request holds helpers shared by the handlers for reading requests
// and writing the common error responses
package request

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"bitwise74/blog-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// Bind decodes the JSON body into obj and validates it. On failure the
// response is written and false is returned.
func Bind(c *gin.Context, obj any) bool {
	requestID := c.MustGet("requestID").(string)

	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		// An empty body is reported per field like any other missing input
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return true
	}

	if fields, ok := validators.FieldErrors(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "The given data was invalid.",
			"errors":    fields,
			"requestID": requestID,
		})
		return false
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     "Request body size exceeds limit",
			"requestID": requestID,
		})
		return false
	}

	zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

	c.JSON(http.StatusBadRequest, gin.H{
		"error":     "Invalid request body",
		"requestID": requestID,
	})
	return false
}

// FieldError writes a 422 for a single field, matching what Bind produces
func FieldError(c *gin.Context, field, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":     "The given data was invalid.",
		"errors":    gin.H{field: []string{msg}},
		"requestID": c.MustGet("requestID").(string),
	})
}

// InternalError logs err and writes a generic 500
func InternalError(c *gin.Context, msg string, err error) {
	requestID := c.MustGet("requestID").(string)

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":     "Internal server error",
		"requestID": requestID,
	})

	zap.L().Error(msg, zap.Error(err), zap.String("requestID", requestID))
}

// ParamID reads a positive numeric path parameter
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}
