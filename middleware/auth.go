package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"publisher-platform/models"
	"publisher-platform/services"
)

// CallerKey is the gin context key holding the validated caller.
const CallerKey = "caller"

// Auth validates the bearer token and stores the extracted caller in the
// request context. Missing, malformed and invalid tokens all end the
// request with a generic 401.
func Auth(tokens services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}

		caller, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(CallerKey, caller)
		c.Next()
	}
}

// RequireRole ends the request with 403 unless the caller holds one of
// the given roles. Must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		for _, role := range roles {
			if caller.HasRole(role) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// CallerFromContext retrieves the caller stored by Auth.
func CallerFromContext(c *gin.Context) (models.Caller, bool) {
	value, exists := c.Get(CallerKey)
	if !exists {
		return models.Caller{}, false
	}
	caller, ok := value.(models.Caller)
	return caller, ok
}
