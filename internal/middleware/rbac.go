package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jucampus/registrar-api/internal/models"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/response"
)

// RBAC enforces role-based access control for routes. The super admin
// role always passes.
func RBAC(allowed ...models.AdminRole) gin.HandlerFunc {
	allowedRoles := make(map[models.AdminRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextAdminKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if claims.Role == models.RoleSuperAdmin {
			c.Next()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
