package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"moviehub-backend/pkg/jwt"
)

const (
	// ContextUsername is the gin context key the authenticated principal
	// is stored under.
	ContextUsername = "username"
	// ContextRole is the gin context key for the principal's role.
	ContextRole = "role"
)

// Auth requires a valid bearer token and stores the principal in the
// request context. Requests without one are rejected.
func Auth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, manager)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}

		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// OptionalAuth resolves a bearer token when present but lets anonymous
// requests through. Listing and read endpoints use it so viewer-dependent
// fields (favorited, following, liked) can be populated for logged-in
// callers.
func OptionalAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, manager); ok {
			c.Set(ContextUsername, claims.Username)
			c.Set(ContextRole, claims.Role)
		}
		c.Next()
	}
}

// RequireRole gates a route on the role claim. Used for admin-only
// registration; authorship rules live in the service layer, not here.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, manager *jwt.Manager) (*jwt.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := manager.ValidateToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// Viewer returns the authenticated username, or nil for anonymous
// requests. Services take this as the optional viewer parameter.
func Viewer(c *gin.Context) *string {
	username := c.GetString(ContextUsername)
	if username == "" {
		return nil
	}
	return &username
}
