package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adminforge/backoffice-api/internal/models"
	appErrors "github.com/adminforge/backoffice-api/pkg/errors"
	"github.com/adminforge/backoffice-api/pkg/response"
)

// ContextUserKey is the gin context key under which the authenticated user is
// stored after the access gate runs.
const ContextUserKey = "currentUser"

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.JWTClaims, error)
}

// IdentityLoader resolves the identity referenced by a token subject.
type IdentityLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth gates a route group behind bearer token authentication. The
// token subject must resolve to an existing active account; every failure
// mode collapses into the same 401 so callers cannot probe which check
// rejected them.
func RequireAuth(validator TokenValidator, identities IdentityLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		user, err := identities.FindByID(c.Request.Context(), claims.Subject)
		if err != nil || user == nil || !user.Active {
			abortUnauthorized(c)
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user placed in context by RequireAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context) {
	response.Error(c, appErrors.ErrUnauthorized)
	c.Abort()
}
