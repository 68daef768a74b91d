package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/schoolcore/school-api/internal/models"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
	"github.com/schoolcore/school-api/pkg/response"
)

// RequireRoles allows only the listed roles past. It assumes JWTAuth ran
// earlier in the chain.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserRole)
		if !exists {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}

		role, ok := value.(models.UserRole)
		if !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		if _, ok := allowed[role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions"))
			c.Abort()
			return
		}

		c.Next()
	}
}
