package middleware

import (
	"net/http"

	"micasa/internal/authz"
	"micasa/internal/models"
	"micasa/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only when the caller holds one of roles.
// It must run after Auth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			response.Abort(c, http.StatusUnauthorized, "user not authenticated")
			return
		}

		role := GetRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		response.Abort(c, http.StatusForbidden, "insufficient permissions")
	}
}

// RequirePermission guards a route with the roles the authorizer grants action.
func RequirePermission(authorizer authz.Authorizer, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			response.Abort(c, http.StatusUnauthorized, "user not authenticated")
			return
		}

		if !authorizer.CanPerform(GetRole(c), action) {
			response.Abort(c, http.StatusForbidden, "insufficient permissions")
			return
		}

		c.Next()
	}
}
