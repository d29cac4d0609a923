package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const accessTokenKey = "access_token"

// Auth requires a bearer token and stashes it for the handler. Whether the
// token names a live session, and whether its role suffices, is decided by
// the service call the handler makes.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"message": "authentication required", "code": "missing_token"},
			})
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"message": "authentication required", "code": "missing_token"},
			})
			return
		}

		c.Set(accessTokenKey, tokenStr)
		c.Next()
	}
}

// AccessToken returns the bearer token Auth stored on c.
func AccessToken(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}
