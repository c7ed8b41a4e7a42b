package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cofounder/pkg/logger"
	"cofounder/pkg/services"
)

const (
	ContextUserIDKey = "current_user_id"
	ContextJTIKey    = "current_jti"
	contextClaimsKey = "current_claims"
)

// TokenVerifier is satisfied by services.IdentityService.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*services.Claims, error)
}

// AuthMiddleware requires "Authorization: Bearer <token>" and stores the caller in the context.
func AuthMiddleware(verifier TokenVerifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authorization header"})
			return
		}
		claims, err := Authenticate(c.Request.Context(), verifier, auth)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			log.Error("Token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		// set to context
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextJTIKey, claims.JTI)
		c.Set(contextClaimsKey, claims)
		c.Next()
	}
}

// Authenticate verifies an Authorization header value of the form "Bearer <token>".
func Authenticate(ctx context.Context, verifier TokenVerifier, header string) (*services.Claims, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, services.ErrUnauthorized
	}
	return verifier.Verify(ctx, parts[1])
}

// CurrentUserID returns the id stored by AuthMiddleware, or "".
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// CurrentClaims returns the verified claims stored by AuthMiddleware, or nil.
func CurrentClaims(c *gin.Context) *services.Claims {
	v, ok := c.Get(contextClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*services.Claims)
	return claims
}
