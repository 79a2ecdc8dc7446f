package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/apt-tech/connect-backend/internal/sessions"
	"github.com/apt-tech/connect-backend/internal/users"
	"github.com/gin-gonic/gin"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// BearerToken extracts the raw token from an Authorization header value.
// Returns "" when the header is absent or not of the form "Bearer <token>".
func BearerToken(header string) string {
	var token string
	if n, _ := fmt.Sscanf(header, "Bearer %s", &token); n != 1 {
		return ""
	}
	return token
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using
// the provided verifier. Revoked tokens (see sessions.Blacklist) are rejected
// before verification; a nil blacklist disables that check. On success the
// claims map is stored on the context under "claims".
func AuthMiddleware(ver Verifier, blacklist *sessions.Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		token := BearerToken(auth)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		if revoked, err := blacklist.IsRevoked(c.Request.Context(), token); err == nil && revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// Extract claims
		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// RoleResolver looks up the stored role for a uid when the token carries no
// role claim. Satisfied by *users.Service.
type RoleResolver interface {
	GetRole(ctx context.Context, uid string) (string, error)
}

// RequireRole gates a route on the caller's role. Resolution is claim-first:
// the `role` claim on the verified token wins; when absent the users document
// is read by uid. Must run after AuthMiddleware.
func RequireRole(resolver RoleResolver, required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("claims")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		claims, _ := v.(map[string]interface{})

		role, _ := claims["role"].(string)
		if role == "" {
			sub, _ := claims["sub"].(string)
			if sub == "" {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient privileges"})
				return
			}
			resolved, err := resolver.GetRole(c.Request.Context(), sub)
			if err != nil {
				if err == users.ErrNotFound {
					c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient privileges"})
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			role = resolved
		}

		if role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient privileges"})
			return
		}
		c.Next()
	}
}
