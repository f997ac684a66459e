package lob

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/pkg/response"
)

// Handler serves line of business and process endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a line of business handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateRequest is the payload for creating a line of business.
type CreateRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"max=500"`
}

// Create handles POST /api/organizations/:orgId/line-of-businesses.
func (h *Handler) Create(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	l := &models.LineOfBusiness{OrganizationID: orgID, Name: req.Name, Description: req.Description}
	if err := h.repo.Create(c.Request.Context(), l); err != nil {
		h.logger.Error("create line of business", zap.Error(err))
		response.Internal(c, "failed to create line of business")
		return
	}
	response.Created(c, l)
}

// List handles GET /api/organizations/:orgId/line-of-businesses. Each entry
// carries its processes so the client renders the full catalog in one call.
func (h *Handler) List(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	lobs, err := h.repo.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list lines of business", zap.Error(err))
		response.Internal(c, "failed to list lines of business")
		return
	}
	type entry struct {
		models.LineOfBusiness
		Processes []models.Process `json:"processes"`
	}
	out := make([]entry, 0, len(lobs))
	for _, l := range lobs {
		procs, err := h.repo.ListProcesses(c.Request.Context(), l.ID)
		if err != nil {
			h.logger.Error("list processes", zap.Error(err), zap.String("lob_id", l.ID.String()))
			response.Internal(c, "failed to list processes")
			return
		}
		if procs == nil {
			procs = []models.Process{}
		}
		out = append(out, entry{LineOfBusiness: l, Processes: procs})
	}
	response.OK(c, out)
}

// Update handles PATCH /api/line-of-businesses/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid line of business id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	l, err := h.repo.Update(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		response.NotFound(c, "line of business not found")
		return
	}
	response.OK(c, l)
}

// Delete handles DELETE /api/line-of-businesses/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid line of business id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete line of business", zap.Error(err))
		response.Internal(c, "failed to delete line of business")
		return
	}
	response.NoContent(c)
}

// ProcessRequest is the payload for creating or updating a process. Planned
// phase durations are in working days.
type ProcessRequest struct {
	Name                 string `json:"name" binding:"required,min=2,max=120"`
	InductionDays        int    `json:"inductionDays" binding:"min=0"`
	TrainingDays         int    `json:"trainingDays" binding:"min=0"`
	CertificationDays    int    `json:"certificationDays" binding:"min=0"`
	OJTDays              int    `json:"ojtDays" binding:"min=0"`
	OJTCertificationDays int    `json:"ojtCertificationDays" binding:"min=0"`
}

// CreateProcess handles POST /api/line-of-businesses/:id/processes.
func (h *Handler) CreateProcess(c *gin.Context) {
	lobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid line of business id")
		return
	}
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	p := &models.Process{
		LineOfBusinessID:     lobID,
		Name:                 req.Name,
		InductionDays:        req.InductionDays,
		TrainingDays:         req.TrainingDays,
		CertificationDays:    req.CertificationDays,
		OJTDays:              req.OJTDays,
		OJTCertificationDays: req.OJTCertificationDays,
	}
	if err := h.repo.CreateProcess(c.Request.Context(), p); err != nil {
		h.logger.Error("create process", zap.Error(err))
		response.Internal(c, "failed to create process")
		return
	}
	response.Created(c, p)
}

// UpdateProcess handles PATCH /api/processes/:id.
func (h *Handler) UpdateProcess(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid process id")
		return
	}
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	p := &models.Process{
		ID:                   id,
		Name:                 req.Name,
		InductionDays:        req.InductionDays,
		TrainingDays:         req.TrainingDays,
		CertificationDays:    req.CertificationDays,
		OJTDays:              req.OJTDays,
		OJTCertificationDays: req.OJTCertificationDays,
	}
	if err := h.repo.UpdateProcess(c.Request.Context(), p); err != nil {
		response.NotFound(c, "process not found")
		return
	}
	response.OK(c, p)
}

// DeleteProcess handles DELETE /api/processes/:id.
func (h *Handler) DeleteProcess(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid process id")
		return
	}
	if err := h.repo.DeleteProcess(c.Request.Context(), id); err != nil {
		h.logger.Error("delete process", zap.Error(err))
		response.Internal(c, "failed to delete process")
		return
	}
	response.NoContent(c)
}
