package middleware

import (
	"net/http"
	"strings"

	"cashflow_tracker/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthUserKey holds the authenticated owner id (int) in the gin context
const AuthUserKey = "authUser"

// JWTAuthMiddleware resolves the owner id from an "Authorization: Bearer" token
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := jwtUtil.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AuthUserKey, claims.UserID)
		c.Next()
	}
}

// OwnerID returns the owner id set by JWTAuthMiddleware
func OwnerID(c *gin.Context) (int, bool) {
	v, ok := c.Get(AuthUserKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok && id > 0
}
