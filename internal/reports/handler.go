package reports

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/middleware"
	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/pkg/queue"
	"github.com/qualitrack/backend/pkg/response"
	"github.com/qualitrack/backend/pkg/storage"
)

// Handler serves batch report generation and the report archive.
type Handler struct {
	repo    *Repository
	builder *Builder
	queue   *queue.Queue
	s3      *storage.S3
	logger  *zap.Logger
}

// NewHandler creates a reports handler. s3 may be nil, in which case archive
// entries carry no download URL but synchronous generation still works.
func NewHandler(repo *Repository, builder *Builder, q *queue.Queue, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, builder: builder, queue: q, s3: s3, logger: logger}
}

// Insight handles GET /api/batches/:batchId/reports/insight.pdf, rendering
// and streaming the PDF in the request.
func (h *Handler) Insight(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	pdfBytes, err := h.builder.Build(c.Request.Context(), batchID)
	if err != nil {
		h.logger.Error("build insight report", zap.Error(err))
		response.Internal(c, "failed to build report")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="batch-insight.pdf"`)
	c.Data(200, "application/pdf", pdfBytes)
}

// Generate handles POST /api/batches/:batchId/reports, queueing background
// generation. The response carries the report ID the archive entry will use.
func (h *Handler) Generate(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	reportID := uuid.New()
	if err := h.queue.EnqueueReportGenerate(c.Request.Context(), queue.ReportGeneratePayload{
		OrganizationID: orgID,
		BatchID:        batchID,
		ReportID:       reportID,
		RequestedByID:  userID,
	}); err != nil {
		h.logger.Error("enqueue report generation", zap.Error(err))
		response.Internal(c, "failed to queue report generation")
		return
	}
	response.Accepted(c, gin.H{"report_id": reportID})
}

// archiveEntry is one archived report with a time-limited download URL.
type archiveEntry struct {
	models.BatchReport
	DownloadURL string `json:"download_url,omitempty"`
}

// Archive handles GET /api/batches/:batchId/reports, listing archived
// reports with presigned download URLs.
func (h *Handler) Archive(c *gin.Context) {
	batchID := c.MustGet(batches.ContextBatchID).(uuid.UUID)
	list, err := h.repo.ListByBatch(c.Request.Context(), batchID)
	if err != nil {
		h.logger.Error("list report archive", zap.Error(err))
		response.Internal(c, "failed to list reports")
		return
	}
	out := make([]archiveEntry, 0, len(list))
	for _, rep := range list {
		entry := archiveEntry{BatchReport: rep}
		if h.s3 != nil {
			url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(),
				h.s3.ReportsBucket(), rep.S3Key, h.s3.PresignExpire())
			if err != nil {
				h.logger.Warn("presign report url", zap.Error(err), zap.String("key", rep.S3Key))
			} else {
				entry.DownloadURL = url
			}
		}
		out = append(out, entry)
	}
	response.OK(c, out)
}
