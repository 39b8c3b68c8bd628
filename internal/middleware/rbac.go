package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
	"github.com/noah-isme/course-scheduler/pkg/response"
)

// selfRole is a sentinel accepted by RBAC meaning the route is allowed when
// the path's :id parameter matches the authenticated user's id, regardless
// of role.
const selfRole = "SELF"

// RBAC restricts a route to the given roles. Pass selfRole ("SELF") to also
// allow a request whose :id path parameter matches the caller's user id.
func RBAC(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	allowSelf := false
	for _, role := range roles {
		if role == selfRole {
			allowSelf = true
			continue
		}
		allowed[role] = true
	}

	return func(c *gin.Context) {
		raw, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := raw.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if allowed[string(claims.Role)] {
			c.Next()
			return
		}
		if allowSelf && c.Param("id") == claims.UserID {
			c.Next()
			return
		}

		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions"))
		c.Abort()
	}
}
