// Package middleware provides the request-level guards for the HTTP API:
// bearer-token authentication and per-user rate limiting.
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// TokenVerifier is the verification surface the middleware depends on.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*service.AuthUser, error)
}

// Auth verifies the request's bearer token and stores the identity in the
// request context. Requests without a valid token get 401.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		user, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Printf("Warning: token verification failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ContextUserID, user.UserID)
		c.Set(ContextRole, user.Role)
		c.Next()
	}
}

// RequireRole rejects requests whose verified role is not in the allowed
// set. Role comparison is case-insensitive.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = true
	}
	return func(c *gin.Context) {
		role := strings.ToLower(c.GetString(ContextRole))
		if !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		c.Next()
	}
}
