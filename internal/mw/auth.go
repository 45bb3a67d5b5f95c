package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"running-rooms-backend/internal/auth"
)

// Context keys set by the access-control middleware.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextAdmin    = "admin"
)

// AdminTokenHeader carries the admin token on admin routes.
const AdminTokenHeader = "admintoken"

// RequireUser verifies the session token in the Authorization header. The
// raw token is expected; a "Bearer " prefix is tolerated.
func RequireUser(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if scheme, rest, ok := strings.Cut(raw, " "); ok && strings.EqualFold(scheme, "Bearer") {
			raw = strings.TrimSpace(rest)
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := tokens.ParseUser(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// RequireAdmin verifies the admin token header. Missing and invalid tokens
// are both refused with 403.
func RequireAdmin(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(AdminTokenHeader))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		claims, err := tokens.ParseAdmin(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(ContextAdmin, claims.Username)
		c.Next()
	}
}
