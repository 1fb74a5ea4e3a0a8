package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "radblog/internal/errors"
	"radblog/internal/models"
)

// RequireRole allows the request through only when the identity holds role.
// It must run after Auth; a missing identity means the route was wired
// wrong, which is reported as a server error rather than a 401.
func RequireRole(role models.Role) gin.HandlerFunc {
	return requireRoles(func(roles models.RoleSet) bool {
		return roles.Has(role)
	})
}

// RequirePublisher gates post creation on the shared CanPublish capability
// predicate instead of an inline role list.
func RequirePublisher() gin.HandlerFunc {
	return requireRoles(models.CanPublish)
}

func requireRoles(allowed func(models.RoleSet) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.ErrorResponse{
				Error: "role gate configured before auth gate",
				Code:  "MISCONFIGURED_ROUTE",
			})
			return
		}

		if !allowed(identity.Roles) {
			abortWithError(c, apperrors.ErrForbidden)
			return
		}

		c.Next()
	}
}
