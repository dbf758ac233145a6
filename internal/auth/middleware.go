package auth

import (
	"net/http"
	"strings"

	"github.com/fekuna/storefront-service/internal/response"
	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Message(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		u, err := tm.Verify(token)
		if err != nil {
			response.Message(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), u))
		c.Next()
	}
}

// OptionalAuthenticate attaches the caller when a valid token is present and
// lets anonymous requests through. A malformed token is still rejected.
func OptionalAuthenticate(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		u, err := tm.Verify(token)
		if err != nil {
			response.Message(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), u))
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := FromContext(c.Request.Context())
		if u == nil {
			response.Message(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}
		if !HasRole(u.Role, role) {
			response.Message(c, http.StatusForbidden, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
