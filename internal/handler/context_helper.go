package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/schoolcore/school-api/internal/middleware"
	"github.com/schoolcore/school-api/internal/models"
)

// currentUserID returns the authenticated user's id from the context.
func currentUserID(c *gin.Context) string {
	if value, exists := c.Get(middleware.ContextUserID); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// currentRole returns the authenticated user's role from the context.
func currentRole(c *gin.Context) models.UserRole {
	if value, exists := c.Get(middleware.ContextUserRole); exists {
		if role, ok := value.(models.UserRole); ok {
			return role
		}
	}
	return ""
}
