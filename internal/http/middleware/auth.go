// Package middleware – bearer-token authentication.
//
// Two flavours are provided:
//   - RequireAuth: rejects requests without a valid token (401).
//   - OptionalAuth: resolves the caller when a token is present, but lets
//     anonymous requests through untouched.
//
// Both set the "userID" context key consumed by handlers, so the rest of the
// HTTP layer never touches the Authorization header directly.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-backend/internal/auth"
)

// ContextUserIDKey is the Gin context key under which the authenticated
// account id is stored.
const ContextUserIDKey = "userID"

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "" when the header is absent or malformed.
func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth returns middleware that aborts with 401 unless the request
// carries a valid bearer token. On success the account id is placed into the
// context under ContextUserIDKey.
func RequireAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "missing bearer token",
			})
			return
		}
		claims, err := issuer.Verify(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "invalid or expired token",
			})
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth returns middleware that resolves the caller from a bearer
// token when one is present. Invalid tokens are treated as anonymous rather
// than rejected, so public listings stay reachable with a stale token.
func OptionalAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearerToken(c); tok != "" {
			if claims, err := issuer.Verify(tok); err == nil {
				c.Set(ContextUserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}
