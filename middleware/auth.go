package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chirp/auth"
)

// ContextUserID is the gin context key carrying the authenticated user key.
const ContextUserID = "userId"

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		// query parameter fallback for clients that cannot set headers
		return c.Query("token")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// RequireAuth rejects requests without a valid token and stores the resolved
// user key in the context.
func RequireAuth(tokens auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		userID, err := tokens.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// OptionalAuth resolves a token when one is present but lets anonymous
// requests through. Queries with viewer-dependent behavior use this.
func OptionalAuth(tokens auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if userID, err := tokens.Verify(token); err == nil {
				c.Set(ContextUserID, userID)
			}
		}
		c.Next()
	}
}
