package organizations

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qualitrack/backend/internal/middleware"
	"github.com/qualitrack/backend/pkg/response"
)

// ContextOrganizationID is the context key for the validated organization ID.
const ContextOrganizationID = "organization_id"

// RequireOrgAccess validates that the user belongs to the :orgId organization.
// Call after JWT. Platform admins bypass the membership check.
func RequireOrgAccess(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := uuid.Parse(c.Param("orgId"))
		if err != nil {
			response.BadRequest(c, "invalid organization id")
			c.Abort()
			return
		}
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		role, _ := c.MustGet(middleware.ContextUserRole).(string)
		if role != "admin" {
			ok, _ := repo.IsMember(c.Request.Context(), orgID, userID)
			if !ok {
				response.Forbidden(c, "not authorized for this organization")
				c.Abort()
				return
			}
		}
		c.Set(ContextOrganizationID, orgID)
		c.Next()
	}
}
