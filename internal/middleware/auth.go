package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodbridge/backend/internal/types"
)

// identityKey is the gin context key the auth middleware stores the
// resolved Identity under.
const identityKey = "identity"

// TokenValidator validates a bearer token and resolves its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// Auth validates the bearer token and stores the request-scoped identity
// plus the session ID (for logout) in the gin context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			c.Abort()
			return
		}

		c.Set(identityKey, claims.Identity())
		c.Set("session_id", claims.ID)
		c.Next()
	}
}

// RequireRole gates a route group on the session role. Runs after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := Identity(c)
		if !ok || identity.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Identity returns the request-scoped identity resolved by Auth.
func Identity(c *gin.Context) (types.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return types.Identity{}, false
	}
	identity, ok := value.(types.Identity)
	return identity, ok
}

// SessionID returns the session key behind the current token.
func SessionID(c *gin.Context) string {
	return c.GetString("session_id")
}
