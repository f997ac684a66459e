package phasechange

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/metrics"
	"github.com/qualitrack/backend/internal/middleware"
	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/internal/realtime"
	"github.com/qualitrack/backend/pkg/response"
)

// Handler serves the phase-change request workflow.
type Handler struct {
	repo      *Repository
	batchRepo *batches.Repository
	orgRepo   *organizations.Repository
	inval     *metrics.Broadcaster
	hub       *realtime.Hub
	logger    *zap.Logger
}

// NewHandler creates a phase-change handler. hub may be nil in tests.
func NewHandler(repo *Repository, batchRepo *batches.Repository, orgRepo *organizations.Repository,
	inval *metrics.Broadcaster, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, batchRepo: batchRepo, orgRepo: orgRepo,
		inval: inval, hub: hub, logger: logger}
}

// CreateRequest is the payload for raising a phase-change request.
type CreateRequest struct {
	ToStatus string `json:"toStatus" binding:"required"`
	Comments string `json:"comments" binding:"max=1000"`
}

// Create handles POST /api/batches/:batchId/phase-change-requests. The from
// status is always the batch's current status; only forward transitions are
// accepted, and a batch can carry at most one pending request.
func (h *Handler) Create(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if !models.ValidBatchStatus(req.ToStatus) {
		response.BadRequest(c, "invalid target status")
		return
	}
	batch, err := h.batchRepo.GetByID(c.Request.Context(), batchID)
	if err != nil {
		response.NotFound(c, "batch not found")
		return
	}
	if !models.ValidPhaseTransition(batch.Status, models.BatchStatus(req.ToStatus)) {
		response.BadRequest(c, "batch cannot move from "+string(batch.Status)+" to "+req.ToStatus)
		return
	}
	pending, err := h.repo.HasPending(c.Request.Context(), batchID)
	if err != nil {
		h.logger.Error("check pending phase change", zap.Error(err))
		response.Internal(c, "failed to create request")
		return
	}
	if pending {
		response.Conflict(c, "batch already has a pending phase change request")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	pcr := &models.PhaseChangeRequest{
		BatchID:       batchID,
		FromStatus:    batch.Status,
		ToStatus:      models.BatchStatus(req.ToStatus),
		Comments:      req.Comments,
		RequestedByID: userID,
	}
	if err := h.repo.Create(c.Request.Context(), pcr); err != nil {
		h.logger.Error("create phase change request", zap.Error(err))
		response.Internal(c, "failed to create request")
		return
	}
	response.Created(c, pcr)
}

// List handles GET /api/batches/:batchId/phase-change-requests?status=.
func (h *Handler) List(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	status := c.Query("status")
	switch models.PhaseChangeStatus(status) {
	case "", models.PhaseChangePending, models.PhaseChangeApproved, models.PhaseChangeRejected:
	default:
		response.BadRequest(c, "invalid status filter")
		return
	}
	list, err := h.repo.ListByBatch(c.Request.Context(), batchID, status)
	if err != nil {
		h.logger.Error("list phase change requests", zap.Error(err))
		response.Internal(c, "failed to list requests")
		return
	}
	if list == nil {
		list = []models.PhaseChangeRequest{}
	}
	response.OK(c, list)
}

// ReviewRequest is the payload for approving or rejecting a request.
type ReviewRequest struct {
	Action   string `json:"action" binding:"required,oneof=approve reject"`
	Comments string `json:"comments" binding:"max=1000"`
}

// Review handles PATCH /api/phase-change-requests/:id. Approval moves the
// batch in the same transaction and the response reflects the status the
// batch actually landed in.
func (h *Handler) Review(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "request not found")
		return
	}
	if !h.canReview(c, existing.BatchID) {
		response.Forbidden(c, "not authorized to review this request")
		return
	}
	reviewerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if req.Action == "reject" {
		pcr, err := h.repo.Reject(c.Request.Context(), id, reviewerID, req.Comments)
		if err != nil {
			response.Conflict(c, "request is not pending")
			return
		}
		response.OK(c, pcr)
		return
	}

	pcr, batchStatus, err := h.repo.Approve(c.Request.Context(), id, reviewerID, req.Comments)
	if err != nil {
		response.Conflict(c, "request is not pending or the batch moved since it was raised")
		return
	}

	h.inval.InvalidateBatch(c.Request.Context(), pcr.BatchID)
	if h.hub != nil {
		h.hub.PublishToBatchOnly(pcr.BatchID, realtime.EventPhaseChanged, gin.H{
			"batch_id":    pcr.BatchID,
			"from_status": pcr.FromStatus,
			"to_status":   batchStatus,
		})
	}

	response.OK(c, gin.H{"request": pcr, "batch_status": batchStatus})
}

// Delete handles DELETE /api/phase-change-requests/:id. Only the requester
// may withdraw, and only while the request is pending.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "request not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	if existing.RequestedByID != userID && role != "admin" {
		response.Forbidden(c, "only the requester can withdraw a request")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Conflict(c, "request is not pending")
		return
	}
	response.NoContent(c)
}

func (h *Handler) canReview(c *gin.Context, batchID uuid.UUID) bool {
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	if role == "admin" {
		return true
	}
	if role != "manager" {
		return false
	}
	orgID, err := h.batchRepo.OrganizationOf(c.Request.Context(), batchID)
	if err != nil {
		return false
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ok, _ := h.orgRepo.IsMember(c.Request.Context(), orgID, userID)
	return ok
}
