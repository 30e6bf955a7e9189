package middleware

import (
	"net/http"
	"strings"

	"institute/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates the bearer token, confirms it has not been
// revoked, and requires the role claim to be one of allowedRoles. An
// empty allowedRoles list accepts any authenticated subject. The subject
// ID and role are stored on the gin context for handlers.
func JWTAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		subject, role, err := utils.ExtractClaimsFromToken(tokenString)
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		// A revoked or rotated token no longer matches the cached hash.
		if !utils.AuthTokenValid(utils.GetAuthCacheClient(), subject, utils.HashToken(tokenString)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired or revoked"})
			return
		}

		if len(allowedRoles) > 0 {
			allowed := false
			for _, r := range allowedRoles {
				if role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
				return
			}
		}

		c.Set("subjectID", subject)
		c.Set("subjectRole", role)
		c.Next()
	}
}
