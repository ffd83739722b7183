package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TokenHeader carries the shared secret on every authenticated request.
const TokenHeader = "x-app-token"

// TokenRequired rejects any request whose token header does not match the
// configured shared secret.
func TokenRequired(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(TokenHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
