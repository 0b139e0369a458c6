// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"net/http"
	"strings"

	"micasa/internal/models"
	"micasa/pkg/auth"
	"micasa/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys for storing user data
const (
	UserIDKey = "userID"
	EmailKey  = "userEmail"
	RoleKey   = "userRole"
)

// Auth returns a middleware that validates JWT tokens.
func Auth(tokens auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Abort(c, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UID)
		c.Set(EmailKey, claims.Email)
		c.Set(RoleKey, models.Role(claims.Role))

		c.Next()
	}
}

// GetUserID retrieves the user ID from the context.
// Returns empty string if not found.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetRole retrieves the caller's role from the context.
func GetRole(c *gin.Context) models.Role {
	role, exists := c.Get(RoleKey)
	if !exists {
		return ""
	}
	r, _ := role.(models.Role)
	return r
}

// GetActor returns the authenticated caller as set by Auth.
func GetActor(c *gin.Context) models.Actor {
	return models.Actor{
		UID:   GetUserID(c),
		Email: c.GetString(EmailKey),
		Role:  GetRole(c),
	}
}
