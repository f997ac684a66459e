package attendance

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/metrics"
	"github.com/qualitrack/backend/internal/middleware"
	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/internal/realtime"
	"github.com/qualitrack/backend/pkg/queue"
	"github.com/qualitrack/backend/pkg/response"
)

// Handler serves the attendance marking and overview endpoints.
type Handler struct {
	repo      *Repository
	batchRepo *batches.Repository
	orgRepo   *organizations.Repository
	inval     *metrics.Broadcaster
	queue     *queue.Queue
	hub       *realtime.Hub
	logger    *zap.Logger
}

// NewHandler creates an attendance handler. hub may be nil in workers and
// tests.
func NewHandler(repo *Repository, batchRepo *batches.Repository, orgRepo *organizations.Repository,
	inval *metrics.Broadcaster, q *queue.Queue, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, batchRepo: batchRepo, orgRepo: orgRepo,
		inval: inval, queue: q, hub: hub, logger: logger}
}

// MarkEntry is one trainee's mark inside a marking request.
type MarkEntry struct {
	TraineeID uuid.UUID `json:"traineeId" binding:"required"`
	Status    string    `json:"status" binding:"required"`
}

// MarkRequest is the payload for POST /api/attendance. One request marks any
// number of trainees of one batch for one date.
type MarkRequest struct {
	BatchID uuid.UUID   `json:"batchId" binding:"required"`
	Date    string      `json:"date" binding:"required"`
	Marks   []MarkEntry `json:"marks" binding:"required,min=1"`
}

// Mark handles POST /api/attendance. Marks are upserted, the day's rollup is
// enqueued, the batch room is notified, and the cached metrics entry is
// invalidated so the next metrics read recomputes.
func (h *Handler) Mark(c *gin.Context) {
	var req MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}
	for _, m := range req.Marks {
		if !models.ValidAttendanceStatus(m.Status) {
			response.BadRequest(c, "invalid attendance status: "+m.Status)
			return
		}
	}

	batch, err := h.batchRepo.GetByID(c.Request.Context(), req.BatchID)
	if err != nil {
		response.NotFound(c, "batch not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	if role != "admin" {
		ok, _ := h.orgRepo.IsMember(c.Request.Context(), batch.OrganizationID, userID)
		if !ok {
			response.Forbidden(c, "not authorized for this batch")
			return
		}
	}

	phase := currentPhaseName(batch, date)
	saved := 0
	for _, entry := range req.Marks {
		enrolled, err := h.batchRepo.IsEnrolled(c.Request.Context(), batch.ID, entry.TraineeID)
		if err != nil || !enrolled {
			response.BadRequest(c, "trainee not enrolled in batch: "+entry.TraineeID.String())
			return
		}
		mark := &models.AttendanceMark{
			OrganizationID: batch.OrganizationID,
			BatchID:        batch.ID,
			TraineeID:      entry.TraineeID,
			Date:           date,
			Status:         models.AttendanceStatus(entry.Status),
			Phase:          phase,
			MarkedByID:     userID,
		}
		if err := h.repo.UpsertMark(c.Request.Context(), mark); err != nil {
			h.logger.Error("upsert attendance mark", zap.Error(err))
			response.Internal(c, "failed to save attendance")
			return
		}
		saved++
	}

	if err := h.queue.EnqueueAttendanceRollup(c.Request.Context(), queue.AttendanceRollupPayload{
		OrganizationID: batch.OrganizationID,
		BatchID:        batch.ID,
		Date:           req.Date,
	}); err != nil {
		h.logger.Warn("enqueue attendance rollup", zap.Error(err))
	}

	h.inval.InvalidateBatch(c.Request.Context(), batch.ID)

	if h.hub != nil {
		h.hub.PublishToBatchOnly(batch.ID, realtime.EventAttendanceMarked, gin.H{
			"batch_id": batch.ID,
			"date":     req.Date,
			"marked":   saved,
		})
	}

	response.OK(c, gin.H{"marked": saved, "date": req.Date, "phase": phase})
}

// currentPhaseName returns the name of the phase whose window contains date,
// or the batch status when no window matches.
func currentPhaseName(b *models.Batch, date time.Time) string {
	for _, name := range models.PhaseNames {
		start, end := b.PhaseWindow(name)
		if start == nil || end == nil {
			continue
		}
		if !date.Before(*start) && !date.After(*end) {
			return name
		}
	}
	return string(b.Status)
}

// Overview handles GET /api/attendance/overview?batchIds=a,b,c, returning
// lifetime aggregates per batch.
func (h *Handler) Overview(c *gin.Context) {
	raw := c.Query("batchIds")
	if raw == "" {
		response.BadRequest(c, "batchIds query parameter is required")
		return
	}
	parts := strings.Split(raw, ",")
	if len(parts) > 50 {
		response.BadRequest(c, "too many batch ids, maximum is 50")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)

	out := make(map[string]*models.AttendanceAggregate, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			response.BadRequest(c, "invalid batch id: "+part)
			return
		}
		orgID, err := h.batchRepo.OrganizationOf(c.Request.Context(), id)
		if err != nil {
			continue
		}
		if role != "admin" {
			ok, _ := h.orgRepo.IsMember(c.Request.Context(), orgID, userID)
			if !ok {
				continue
			}
		}
		agg, err := h.repo.Aggregate(c.Request.Context(), id)
		if err != nil {
			h.logger.Error("aggregate attendance", zap.Error(err), zap.String("batch_id", id.String()))
			response.Internal(c, "failed to aggregate attendance")
			return
		}
		agg.AttendanceRate = metrics.Rate(agg.PresentCount, agg.LateCount, agg.TotalRecords)
		out[id.String()] = agg
	}
	response.OK(c, out)
}

// History handles GET /api/batches/:batchId/attendance/history?limit=, the
// per-day aggregate series for one batch.
func (h *Handler) History(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	list, err := h.repo.DailyHistory(c.Request.Context(), batchID, limit)
	if err != nil {
		h.logger.Error("load attendance history", zap.Error(err))
		response.Internal(c, "failed to load attendance history")
		return
	}
	if list == nil {
		list = []models.DailyAttendance{}
	}
	response.OK(c, list)
}
