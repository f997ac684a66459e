package reports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitrack/backend/internal/models"
)

// Repository handles the generated report archive.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create records a generated report. ID is assigned by the caller so the
// worker can derive the S3 key before the upload.
func (r *Repository) Create(ctx context.Context, report *models.BatchReport) error {
	const q = `INSERT INTO batch_reports (id, batch_id, s3_key, size_bytes, requested_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q, report.ID, report.BatchID, report.S3Key,
		report.SizeBytes, report.RequestedBy).Scan(&report.CreatedAt)
}

// ListByBatch returns a batch's archived reports, newest first.
func (r *Repository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.BatchReport, error) {
	const q = `SELECT id, batch_id, s3_key, size_bytes, requested_by, created_at
		FROM batch_reports WHERE batch_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.BatchReport
	for rows.Next() {
		var rep models.BatchReport
		if err := rows.Scan(&rep.ID, &rep.BatchID, &rep.S3Key, &rep.SizeBytes, &rep.RequestedBy, &rep.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rep)
	}
	return list, rows.Err()
}
