package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ContextClaimsKey = "authClaims"

// Middleware guards admin routes with a Bearer token. The token must
// validate and its subject must still exist in the database.
func Middleware(mgr *Manager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims, err := mgr.Validate(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if users != nil {
			user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
			if err != nil || user == nil {
				log.Printf("⚠️ Token for unknown user %s rejected", claims.UserID)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
				return
			}
		}

		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}
