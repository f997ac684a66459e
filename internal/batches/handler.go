package batches

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/pkg/response"
)

// Handler serves the batch lifecycle and roster endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// dateField parses an optional YYYY-MM-DD value.
func dateField(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// CreateRequest is the payload for creating a batch. All dates use
// YYYY-MM-DD. Phase windows are optional; a phase with either endpoint
// missing is treated as not planned.
type CreateRequest struct {
	Name             string     `json:"name" binding:"required,min=2,max=120"`
	Status           string     `json:"status"`
	StartDate        string     `json:"startDate" binding:"required"`
	EndDate          string     `json:"endDate" binding:"required"`
	CapacityLimit    int        `json:"capacityLimit" binding:"min=0"`
	TrainerID        *uuid.UUID `json:"trainerId"`
	LineOfBusinessID *uuid.UUID `json:"lineOfBusinessId"`
	ProcessID        *uuid.UUID `json:"processId"`
	Location         string     `json:"location"`

	InductionStart        string `json:"inductionStart"`
	InductionEnd          string `json:"inductionEnd"`
	TrainingStart         string `json:"trainingStart"`
	TrainingEnd           string `json:"trainingEnd"`
	CertificationStart    string `json:"certificationStart"`
	CertificationEnd      string `json:"certificationEnd"`
	OJTStart              string `json:"ojtStart"`
	OJTEnd                string `json:"ojtEnd"`
	OJTCertificationStart string `json:"ojtCertificationStart"`
	OJTCertificationEnd   string `json:"ojtCertificationEnd"`
}

// Create handles POST /api/organizations/:orgId/batches.
func (h *Handler) Create(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	status := req.Status
	if status == "" {
		status = string(models.BatchPlanned)
	}
	if !models.ValidBatchStatus(status) {
		response.BadRequest(c, "invalid batch status")
		return
	}
	start, ok := dateField(req.StartDate)
	if !ok || start == nil {
		response.BadRequest(c, "startDate must be YYYY-MM-DD")
		return
	}
	end, ok := dateField(req.EndDate)
	if !ok || end == nil {
		response.BadRequest(c, "endDate must be YYYY-MM-DD")
		return
	}
	if end.Before(*start) {
		response.BadRequest(c, "endDate must not be before startDate")
		return
	}

	b := &models.Batch{
		OrganizationID:   orgID,
		Name:             req.Name,
		Status:           models.BatchStatus(status),
		StartDate:        *start,
		EndDate:          *end,
		CapacityLimit:    req.CapacityLimit,
		TrainerID:        req.TrainerID,
		LineOfBusinessID: req.LineOfBusinessID,
		ProcessID:        req.ProcessID,
		Location:         req.Location,
	}
	phasePairs := []struct {
		startRaw, endRaw string
		start, end       **time.Time
		label            string
	}{
		{req.InductionStart, req.InductionEnd, &b.InductionStart, &b.InductionEnd, "induction"},
		{req.TrainingStart, req.TrainingEnd, &b.TrainingStart, &b.TrainingEnd, "training"},
		{req.CertificationStart, req.CertificationEnd, &b.CertificationStart, &b.CertificationEnd, "certification"},
		{req.OJTStart, req.OJTEnd, &b.OJTStart, &b.OJTEnd, "ojt"},
		{req.OJTCertificationStart, req.OJTCertificationEnd, &b.OJTCertificationStart, &b.OJTCertificationEnd, "ojt certification"},
	}
	for _, p := range phasePairs {
		s, ok := dateField(p.startRaw)
		if !ok {
			response.BadRequest(c, p.label+" start must be YYYY-MM-DD")
			return
		}
		e, ok := dateField(p.endRaw)
		if !ok {
			response.BadRequest(c, p.label+" end must be YYYY-MM-DD")
			return
		}
		if s != nil && e != nil && e.Before(*s) {
			response.BadRequest(c, p.label+" end must not be before its start")
			return
		}
		*p.start, *p.end = s, e
	}

	if err := h.repo.Create(c.Request.Context(), b); err != nil {
		h.logger.Error("create batch", zap.Error(err))
		response.Internal(c, "failed to create batch")
		return
	}
	response.Created(c, b)
}

// List handles GET /api/organizations/:orgId/batches?status=.
func (h *Handler) List(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	status := c.Query("status")
	if status != "" && !models.ValidBatchStatus(status) {
		response.BadRequest(c, "invalid batch status filter")
		return
	}
	list, err := h.repo.ListByOrganization(c.Request.Context(), orgID, status)
	if err != nil {
		h.logger.Error("list batches", zap.Error(err))
		response.Internal(c, "failed to list batches")
		return
	}
	if list == nil {
		list = []models.Batch{}
	}
	response.OK(c, list)
}

// Get handles GET /api/batches/:batchId.
func (h *Handler) Get(c *gin.Context) {
	batchID := c.MustGet(ContextBatchID).(uuid.UUID)
	b, err := h.repo.GetByID(c.Request.Context(), batchID)
	if err != nil {
		response.NotFound(c, "batch not found")
		return
	}
	response.OK(c, b)
}

// UpdateRequest is the payload for patching a batch. Omitted fields are left
// untouched; phase dates arrive as column name to YYYY-MM-DD (or null to
// clear) pairs.
type UpdateRequest struct {
	Name          *string            `json:"name"`
	StartDate     *string            `json:"startDate"`
	EndDate       *string            `json:"endDate"`
	CapacityLimit *int               `json:"capacityLimit"`
	TrainerID     *uuid.UUID         `json:"trainerId"`
	Location      *string            `json:"location"`
	PhaseDates    map[string]*string `json:"phaseDates"`
}

// Update handles PATCH /api/batches/:batchId. Status is deliberately not
// patchable here; it moves through phase change requests.
func (h *Handler) Update(c *gin.Context) {
	batchID := c.MustGet(ContextBatchID).(uuid.UUID)
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	f := UpdateFields{
		Name:          req.Name,
		CapacityLimit: req.CapacityLimit,
		TrainerID:     req.TrainerID,
		Location:      req.Location,
	}
	if req.StartDate != nil {
		t, ok := dateField(*req.StartDate)
		if !ok || t == nil {
			response.BadRequest(c, "startDate must be YYYY-MM-DD")
			return
		}
		f.StartDate = t
	}
	if req.EndDate != nil {
		t, ok := dateField(*req.EndDate)
		if !ok || t == nil {
			response.BadRequest(c, "endDate must be YYYY-MM-DD")
			return
		}
		f.EndDate = t
	}
	if len(req.PhaseDates) > 0 {
		f.PhaseDates = make(map[string]*time.Time, len(req.PhaseDates))
		for col, raw := range req.PhaseDates {
			if raw == nil {
				f.PhaseDates[col] = nil
				continue
			}
			t, ok := dateField(*raw)
			if !ok {
				response.BadRequest(c, "phase dates must be YYYY-MM-DD")
				return
			}
			f.PhaseDates[col] = t
		}
	}
	b, err := h.repo.Update(c.Request.Context(), batchID, f)
	if err != nil {
		h.logger.Error("update batch", zap.Error(err))
		response.BadRequest(c, "failed to update batch")
		return
	}
	response.OK(c, b)
}

// Delete handles DELETE /api/batches/:batchId.
func (h *Handler) Delete(c *gin.Context) {
	batchID := c.MustGet(ContextBatchID).(uuid.UUID)
	if err := h.repo.Delete(c.Request.Context(), batchID); err != nil {
		h.logger.Error("delete batch", zap.Error(err))
		response.Internal(c, "failed to delete batch")
		return
	}
	response.NoContent(c)
}

// EnrollRequest is the payload for adding trainees to a batch roster.
type EnrollRequest struct {
	UserIDs []uuid.UUID `json:"userIds" binding:"required,min=1"`
}

// Enroll handles POST /api/batches/:batchId/trainees. Enrollment past the
// capacity limit is rejected.
func (h *Handler) Enroll(c *gin.Context) {
	batchID := c.MustGet(ContextBatchID).(uuid.UUID)
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	b, err := h.repo.GetByID(c.Request.Context(), batchID)
	if err != nil {
		response.NotFound(c, "batch not found")
		return
	}
	if b.CapacityLimit > 0 && b.UserCount+len(req.UserIDs) > b.CapacityLimit {
		response.Conflict(c, "enrollment exceeds batch capacity")
		return
	}
	added, err := h.repo.Enroll(c.Request.Context(), batchID, req.UserIDs)
	if err != nil {
		h.logger.Error("enroll trainees", zap.Error(err))
		response.Internal(c, "failed to enroll trainees")
		return
	}
	response.OK(c, gin.H{"enrolled": added})
}

// Unenroll handles DELETE /api/batches/:batchId/trainees/:userId.
func (h *Handler) Unenroll(c *gin.Context) {
	batchID := c.MustGet(ContextBatchID).(uuid.UUID)
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.Unenroll(c.Request.Context(), batchID, userID); err != nil {
		h.logger.Error("unenroll trainee", zap.Error(err))
		response.Internal(c, "failed to remove trainee")
		return
	}
	response.NoContent(c)
}

// Roster handles GET /api/batches/:batchId/trainees?date=YYYY-MM-DD. The
// date defaults to today and drives which attendance mark each roster entry
// carries.
func (h *Handler) Roster(c *gin.Context) {
	batchID := c.MustGet(ContextBatchID).(uuid.UUID)
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.Query("date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		date = t
	}
	list, err := h.repo.Roster(c.Request.Context(), batchID, date)
	if err != nil {
		h.logger.Error("load roster", zap.Error(err))
		response.Internal(c, "failed to load roster")
		return
	}
	if list == nil {
		list = []models.Trainee{}
	}
	response.OK(c, gin.H{"date": date.Format("2006-01-02"), "trainees": list})
}
