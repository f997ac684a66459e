package metrics

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/pkg/response"
)

// BatchSource loads the batch row and its roster.
type BatchSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error)
	Roster(ctx context.Context, batchID uuid.UUID, date time.Time) ([]models.Trainee, error)
}

// AttendanceSource loads the aggregate history the deriver consumes.
type AttendanceSource interface {
	Aggregate(ctx context.Context, batchID uuid.UUID) (*models.AttendanceAggregate, error)
	DailyHistory(ctx context.Context, batchID uuid.UUID, limit int) ([]models.DailyAttendance, error)
}

// Handler serves the derived batch metrics endpoint.
type Handler struct {
	batchSrc BatchSource
	attSrc   AttendanceSource
	cache    *Cache
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a metrics handler.
func NewHandler(batchSrc BatchSource, attSrc AttendanceSource, cache *Cache, logger *zap.Logger) *Handler {
	return &Handler{batchSrc: batchSrc, attSrc: attSrc, cache: cache, logger: logger, now: time.Now}
}

// Get handles GET /api/batches/:batchId/metrics. The result is assembled
// from the batch row, today's roster, and the rollup history, then cached
// until a mutation invalidates it or the TTL lapses.
func (h *Handler) Get(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	key := Key{OrganizationID: orgID, BatchID: batchID}

	if cached := h.cache.Get(key); cached != nil {
		response.OK(c, cached)
		return
	}

	now := h.now().UTC()
	today := now.Truncate(24 * time.Hour)

	batch, err := h.batchSrc.GetByID(c.Request.Context(), batchID)
	if err != nil {
		response.NotFound(c, "batch not found")
		return
	}
	roster, err := h.batchSrc.Roster(c.Request.Context(), batchID, today)
	if err != nil {
		h.logger.Error("load roster for metrics", zap.Error(err))
		response.Internal(c, "failed to compute metrics")
		return
	}
	daily, err := h.attSrc.DailyHistory(c.Request.Context(), batchID, 0)
	if err != nil {
		h.logger.Error("load daily history for metrics", zap.Error(err))
		response.Internal(c, "failed to compute metrics")
		return
	}
	historical, err := h.attSrc.Aggregate(c.Request.Context(), batchID)
	if err != nil {
		h.logger.Error("load aggregate for metrics", zap.Error(err))
		response.Internal(c, "failed to compute metrics")
		return
	}
	if historical != nil && historical.TotalRecords == 0 {
		historical = nil
	}

	m := Derive(Inputs{
		Batch:      batch,
		Roster:     roster,
		Historical: historical,
		Daily:      daily,
	}, now)

	h.cache.Put(key, m)
	response.OK(c, m)
}
