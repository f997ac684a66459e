package reports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/certifications"
	"github.com/qualitrack/backend/internal/metrics"
	"github.com/qualitrack/backend/internal/models"
)

// Builder assembles the report inputs for one batch and renders the PDF.
// Shared between the synchronous endpoint and the background worker.
type Builder struct {
	batchRepo *batches.Repository
	attSrc    metrics.AttendanceSource
	certRepo  *certifications.Repository
}

// NewBuilder creates an insight report builder.
func NewBuilder(batchRepo *batches.Repository, attSrc metrics.AttendanceSource, certRepo *certifications.Repository) *Builder {
	return &Builder{batchRepo: batchRepo, attSrc: attSrc, certRepo: certRepo}
}

// Build renders the insight PDF for a batch as of now.
func (b *Builder) Build(ctx context.Context, batchID uuid.UUID) ([]byte, error) {
	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	batch, err := b.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	roster, err := b.batchRepo.Roster(ctx, batchID, today)
	if err != nil {
		return nil, err
	}
	daily, err := b.attSrc.DailyHistory(ctx, batchID, 0)
	if err != nil {
		return nil, err
	}
	historical, err := b.attSrc.Aggregate(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if historical != nil && historical.TotalRecords == 0 {
		historical = nil
	}
	m := metrics.Derive(metrics.Inputs{
		Batch:      batch,
		Roster:     roster,
		Historical: historical,
		Daily:      daily,
	}, now)

	passed, evaluated, err := b.certRepo.PassRate(ctx, batchID, models.EvaluationCertification)
	if err != nil {
		return nil, err
	}

	return BuildInsightPDF(InsightData{
		Batch:       batch,
		Metrics:     m,
		Passed:      passed,
		Evaluated:   evaluated,
		GeneratedAt: now,
	})
}
