package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// APIKeyHeader carries the shared secret; api_key query parameter is
	// accepted as a fallback for clients that cannot set headers.
	APIKeyHeader = "X-API-Key"
	apiKeyQuery  = "api_key"
	unauthorized = "invalid or missing API key"
)

// APIKeyAuth rejects requests whose key does not match the configured secret
// before any query runs. The secret is an explicit parameter so tests can
// inject arbitrary keys.
func APIKeyAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(APIKeyHeader)
		if provided == "" {
			provided = c.Query(apiKeyQuery)
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorized})
			return
		}

		c.Next()
	}
}
