package holidays

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/pkg/response"
)

// Handler serves the holiday calendar endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Request is the payload for creating or updating a holiday. Date uses
// YYYY-MM-DD. Recurring holidays repeat every year on the same month and day.
type Request struct {
	Name      string `json:"name" binding:"required,min=2,max=120"`
	Date      string `json:"date" binding:"required"`
	Recurring bool   `json:"recurring"`
}

// Create handles POST /api/organizations/:orgId/holidays.
func (h *Handler) Create(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}
	holiday := &models.Holiday{OrganizationID: orgID, Name: req.Name, Date: date, Recurring: req.Recurring}
	if err := h.repo.Create(c.Request.Context(), holiday); err != nil {
		h.logger.Error("create holiday", zap.Error(err))
		response.Internal(c, "failed to create holiday")
		return
	}
	response.Created(c, holiday)
}

// List handles GET /api/organizations/:orgId/holidays.
func (h *Handler) List(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	list, err := h.repo.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list holidays", zap.Error(err))
		response.Internal(c, "failed to list holidays")
		return
	}
	if list == nil {
		list = []models.Holiday{}
	}
	response.OK(c, list)
}

// Update handles PATCH /api/holidays/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid holiday id")
		return
	}
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}
	holiday := &models.Holiday{ID: id, Name: req.Name, Date: date, Recurring: req.Recurring}
	if err := h.repo.Update(c.Request.Context(), holiday); err != nil {
		response.NotFound(c, "holiday not found")
		return
	}
	response.OK(c, holiday)
}

// Delete handles DELETE /api/holidays/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid holiday id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete holiday", zap.Error(err))
		response.Internal(c, "failed to delete holiday")
		return
	}
	response.NoContent(c)
}
