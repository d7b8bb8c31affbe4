package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/models"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// RequireRoles allows the request through only when the authenticated user
// holds one of the listed roles. It must run after JWTAuth.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
			c.Abort()
			return
		}

		claims, ok := value.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
			c.Abort()
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions"))
		c.Abort()
	}
}
