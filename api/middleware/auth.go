package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/getmd/models"
)

// Auth returns API-key authentication middleware. Clients present the key
// as `X-API-Key: <key>` or `Authorization: Bearer <key>`. An empty key list
// disables authentication entirely (open access).
//
// Key comparison is constant-time so response latency leaks nothing about
// how much of a guessed key matched.
func Auth(apiKeys []string) gin.HandlerFunc {
	if len(apiKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(c *gin.Context) {
		key := clientKey(c)
		if key == "" {
			unauthorized(c, "missing API key: provide X-API-Key or Authorization: Bearer <key>")
			return
		}
		if !keyAllowed(keys, key) {
			unauthorized(c, "invalid API key")
			return
		}

		// Downstream middleware derives the rate-limit identity from this.
		c.Set("api_key", key)
		c.Next()
	}
}

// clientKey extracts the presented API key, trying X-API-Key before the
// Bearer scheme.
func clientKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func keyAllowed(keys [][]byte, presented string) bool {
	p := []byte(presented)
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k, p) == 1 {
			return true
		}
	}
	return false
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.FetchResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: message,
		},
	})
}
