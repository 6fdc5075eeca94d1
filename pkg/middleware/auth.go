package middleware

import (
	"errors"
	"net/http"
	"strings"

	"bitwise74/blog-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Keys set on the gin context for authenticated requests
const (
	UserIDKey  = "userID"
	TokenIDKey = "tokenID"
	UserKey    = "user"
)

// NewAuthMiddleware authenticates the bearer token of the request. On success
// the user, their ID and the token ID are stored on the context and the
// token's last use is recorded in the background.
func NewAuthMiddleware(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		presented, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Unauthenticated",
				"requestID": requestID,
			})
			return
		}

		tok, user, err := tokens.Authenticate(c.Request.Context(), presented)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Unauthenticated",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to authenticate token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		tokens.TouchAsync(c.Request.Context(), tok.ID, c.ClientIP())

		c.Set(UserIDKey, user.ID)
		c.Set(TokenIDKey, tok.ID)
		c.Set(UserKey, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
