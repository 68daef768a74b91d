package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/config"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
	"github.com/schoolcore/school-api/pkg/response"
)

// Context keys populated by JWTAuth for downstream handlers.
const (
	ContextUserID   = "auth.user_id"
	ContextUserRole = "auth.role"
	ContextClaims   = "auth.claims"
)

// JWTAuth verifies the bearer access token. A missing header is
// unauthorized; a malformed, forged or expired token is forbidden.
func JWTAuth(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authorization header required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid authorization header"))
			c.Abort()
			return
		}

		claims := &models.JWTClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.AccessSecret), nil
		})
		if err != nil || !token.Valid {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}
