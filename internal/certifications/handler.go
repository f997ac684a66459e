package certifications

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/middleware"
	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/pkg/response"
)

// Handler serves the certification evaluation and refresher endpoints.
type Handler struct {
	repo      *Repository
	batchRepo *batches.Repository
	logger    *zap.Logger
}

func NewHandler(repo *Repository, batchRepo *batches.Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, batchRepo: batchRepo, logger: logger}
}

// CreateRequest is the payload for opening evaluations. When TraineeIDs is
// empty the whole roster gets one.
type CreateRequest struct {
	Type         string      `json:"type" binding:"required,oneof=certification audit"`
	TemplateName string      `json:"templateName" binding:"max=120"`
	TraineeIDs   []uuid.UUID `json:"traineeIds"`
}

// Create handles POST /api/batches/:batchId/certification-evaluations.
func (h *Handler) Create(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	ids := req.TraineeIDs
	if len(ids) == 0 {
		roster, err := h.batchRepo.Roster(c.Request.Context(), batchID, time.Now().UTC().Truncate(24*time.Hour))
		if err != nil {
			h.logger.Error("load roster for evaluations", zap.Error(err))
			response.Internal(c, "failed to open evaluations")
			return
		}
		for _, t := range roster {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		response.BadRequest(c, "batch has no trainees to evaluate")
		return
	}
	created := make([]models.CertificationEvaluation, 0, len(ids))
	for _, traineeID := range ids {
		enrolled, err := h.batchRepo.IsEnrolled(c.Request.Context(), batchID, traineeID)
		if err != nil || !enrolled {
			response.BadRequest(c, "trainee not enrolled in batch: "+traineeID.String())
			return
		}
		e := models.CertificationEvaluation{
			BatchID:      batchID,
			TraineeID:    traineeID,
			Type:         models.EvaluationType(req.Type),
			TemplateName: req.TemplateName,
		}
		if err := h.repo.Create(c.Request.Context(), &e); err != nil {
			h.logger.Error("create evaluation", zap.Error(err))
			response.Internal(c, "failed to open evaluations")
			return
		}
		created = append(created, e)
	}
	response.Created(c, created)
}

// List handles GET /api/batches/:batchId/certification-evaluations?status=&type=.
func (h *Handler) List(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	status := c.Query("status")
	typ := c.Query("type")
	switch models.EvaluationStatus(status) {
	case "", models.EvaluationPending, models.EvaluationPassed, models.EvaluationFailed:
	default:
		response.BadRequest(c, "invalid status filter")
		return
	}
	switch models.EvaluationType(typ) {
	case "", models.EvaluationCertification, models.EvaluationAudit:
	default:
		response.BadRequest(c, "invalid type filter")
		return
	}
	list, err := h.repo.ListByBatch(c.Request.Context(), batchID, status, typ)
	if err != nil {
		h.logger.Error("list evaluations", zap.Error(err))
		response.Internal(c, "failed to list evaluations")
		return
	}
	if list == nil {
		list = []models.CertificationEvaluation{}
	}
	passed, evaluated, err := h.repo.PassRate(c.Request.Context(), batchID, models.EvaluationCertification)
	if err != nil {
		h.logger.Error("compute pass rate", zap.Error(err))
		response.Internal(c, "failed to list evaluations")
		return
	}
	response.OK(c, gin.H{
		"evaluations": list,
		"passed":      passed,
		"evaluated":   evaluated,
	})
}

// ResultRequest is the payload for recording an evaluation outcome.
type ResultRequest struct {
	Status string   `json:"status" binding:"required,oneof=passed failed"`
	Score  *float64 `json:"score" binding:"omitempty,min=0,max=100"`
}

// RecordResult handles PATCH /api/certification-evaluations/:id.
func (h *Handler) RecordResult(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid evaluation id")
		return
	}
	var req ResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	evaluatorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	e, err := h.repo.RecordResult(c.Request.Context(), id, evaluatorID, models.EvaluationStatus(req.Status), req.Score)
	if err != nil {
		response.NotFound(c, "evaluation not found")
		return
	}
	response.OK(c, e)
}

// RefresherRequest is the payload for scheduling a refresher.
type RefresherRequest struct {
	Reason    string `json:"reason" binding:"max=500"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func parseOptionalDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// ScheduleRefresher handles POST /api/batches/:batchId/trainees/:userId/refresher.
// Any previous active refresher for the trainee is superseded.
func (h *Handler) ScheduleRefresher(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	traineeID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid trainee id")
		return
	}
	enrolled, err := h.batchRepo.IsEnrolled(c.Request.Context(), batchID, traineeID)
	if err != nil || !enrolled {
		response.BadRequest(c, "trainee not enrolled in batch")
		return
	}
	var req RefresherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	start, ok := parseOptionalDate(req.StartDate)
	if !ok {
		response.BadRequest(c, "startDate must be YYYY-MM-DD")
		return
	}
	end, ok := parseOptionalDate(req.EndDate)
	if !ok {
		response.BadRequest(c, "endDate must be YYYY-MM-DD")
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		response.BadRequest(c, "endDate must not be before startDate")
		return
	}
	ref := &models.Refresher{
		BatchID:       batchID,
		TraineeID:     traineeID,
		Reason:        req.Reason,
		StartDate:     start,
		EndDate:       end,
		ScheduledByID: c.MustGet(middleware.ContextUserID).(uuid.UUID),
	}
	if err := h.repo.CreateRefresher(c.Request.Context(), ref); err != nil {
		h.logger.Error("schedule refresher", zap.Error(err))
		response.Internal(c, "failed to schedule refresher")
		return
	}
	response.Created(c, ref)
}

// ListRefreshers handles GET /api/batches/:batchId/refreshers.
func (h *Handler) ListRefreshers(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	list, err := h.repo.ListRefreshers(c.Request.Context(), batchID)
	if err != nil {
		h.logger.Error("list refreshers", zap.Error(err))
		response.Internal(c, "failed to list refreshers")
		return
	}
	if list == nil {
		list = []models.Refresher{}
	}
	response.OK(c, list)
}

// SetRefresherWindow handles PATCH /api/refreshers/:id, adjusting the dates
// of an active refresher.
func (h *Handler) SetRefresherWindow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid refresher id")
		return
	}
	var req RefresherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	start, ok := parseOptionalDate(req.StartDate)
	if !ok {
		response.BadRequest(c, "startDate must be YYYY-MM-DD")
		return
	}
	end, ok := parseOptionalDate(req.EndDate)
	if !ok {
		response.BadRequest(c, "endDate must be YYYY-MM-DD")
		return
	}
	ref, err := h.repo.SetRefresherWindow(c.Request.Context(), id, start, end)
	if err != nil {
		response.NotFound(c, "active refresher not found")
		return
	}
	response.OK(c, ref)
}

// SetTraineeRefresherWindow handles POST .../trainees/:userId/set-refresher,
// adjusting the trainee's active refresher without knowing its id.
func (h *Handler) SetTraineeRefresherWindow(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	traineeID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid trainee id")
		return
	}
	var req RefresherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	start, ok := parseOptionalDate(req.StartDate)
	if !ok {
		response.BadRequest(c, "startDate must be YYYY-MM-DD")
		return
	}
	end, ok := parseOptionalDate(req.EndDate)
	if !ok {
		response.BadRequest(c, "endDate must be YYYY-MM-DD")
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		response.BadRequest(c, "endDate must not be before startDate")
		return
	}
	ref, err := h.repo.SetActiveRefresherWindow(c.Request.Context(), batchID, traineeID, start, end)
	if err != nil {
		response.NotFound(c, "active refresher not found")
		return
	}
	response.OK(c, ref)
}
