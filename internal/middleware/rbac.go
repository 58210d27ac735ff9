package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/adminforge/backoffice-api/internal/models"
	appErrors "github.com/adminforge/backoffice-api/pkg/errors"
	"github.com/adminforge/backoffice-api/pkg/response"
)

// RoleLoader resolves the roles held by a user.
type RoleLoader interface {
	RolesForUser(ctx context.Context, userID string) ([]models.Role, error)
}

// RequireRole authorizes the authenticated user against a role name. The
// check is exact name equality; permission lists on the role are not
// evaluated here. Lookup failures are treated as missing the role.
func RequireRole(roles RoleLoader, roleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortForbidden(c)
			return
		}

		held, err := roles.RolesForUser(c.Request.Context(), user.ID)
		if err != nil {
			abortForbidden(c)
			return
		}

		for _, role := range held {
			if role.Name == roleName {
				c.Next()
				return
			}
		}

		abortForbidden(c)
	}
}

func abortForbidden(c *gin.Context) {
	response.Error(c, appErrors.ErrForbidden)
	c.Abort()
}
