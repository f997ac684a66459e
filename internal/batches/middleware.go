package batches

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qualitrack/backend/internal/middleware"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/pkg/response"
)

// ContextBatchID is the context key for the validated batch ID.
const ContextBatchID = "batch_id"

// RequireBatchAccess resolves :batchId to its organization and validates that
// the user belongs to it. Call after JWT. Platform admins bypass the check.
// Sets both the batch ID and its organization ID on the context.
func RequireBatchAccess(repo *Repository, orgRepo *organizations.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		batchID, err := uuid.Parse(c.Param("batchId"))
		if err != nil {
			response.BadRequest(c, "invalid batch id")
			c.Abort()
			return
		}
		orgID, err := repo.OrganizationOf(c.Request.Context(), batchID)
		if err != nil {
			response.NotFound(c, "batch not found")
			c.Abort()
			return
		}
		// On org-scoped paths the batch must belong to the named org.
		if raw := c.Param("orgId"); raw != "" {
			pathOrg, err := uuid.Parse(raw)
			if err != nil || pathOrg != orgID {
				response.NotFound(c, "batch not found")
				c.Abort()
				return
			}
		}
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		role, _ := c.MustGet(middleware.ContextUserRole).(string)
		if role != "admin" {
			ok, _ := orgRepo.IsMember(c.Request.Context(), orgID, userID)
			if !ok {
				response.Forbidden(c, "not authorized for this batch")
				c.Abort()
				return
			}
		}
		c.Set(ContextBatchID, batchID)
		c.Set(organizations.ContextOrganizationID, orgID)
		c.Next()
	}
}
