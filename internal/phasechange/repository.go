package phasechange

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitrack/backend/internal/models"
)

const requestColumns = `id, batch_id, from_status, to_status, status, COALESCE(comments,''),
	requested_by_id, reviewed_by_id, reviewed_at, created_at, updated_at`

// Repository handles phase-change request persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRequest(row interface{ Scan(...any) error }) (models.PhaseChangeRequest, error) {
	var r models.PhaseChangeRequest
	var from, to, status string
	err := row.Scan(&r.ID, &r.BatchID, &from, &to, &status, &r.Comments,
		&r.RequestedByID, &r.ReviewedByID, &r.ReviewedAt, &r.CreatedAt, &r.UpdatedAt)
	r.FromStatus = models.BatchStatus(from)
	r.ToStatus = models.BatchStatus(to)
	r.Status = models.PhaseChangeStatus(status)
	return r, err
}

// Create inserts a pending request.
func (r *Repository) Create(ctx context.Context, req *models.PhaseChangeRequest) error {
	const q = `INSERT INTO phase_change_requests (batch_id, from_status, to_status, comments, requested_by_id)
		VALUES ($1, $2, $3, NULLIF($4,''), $5)
		RETURNING id, status, created_at, updated_at`
	var status string
	err := r.pool.QueryRow(ctx, q, req.BatchID, string(req.FromStatus), string(req.ToStatus),
		req.Comments, req.RequestedByID).Scan(&req.ID, &status, &req.CreatedAt, &req.UpdatedAt)
	req.Status = models.PhaseChangeStatus(status)
	return err
}

// GetByID returns one request.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.PhaseChangeRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM phase_change_requests WHERE id = $1`
	req, err := scanRequest(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByBatch returns a batch's requests, newest first, optionally filtered
// by approval status.
func (r *Repository) ListByBatch(ctx context.Context, batchID uuid.UUID, status string) ([]models.PhaseChangeRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM phase_change_requests WHERE batch_id = $1`
	args := []any{batchID}
	if status != "" {
		args = append(args, status)
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.PhaseChangeRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

// HasPending reports whether the batch already has a pending request.
func (r *Repository) HasPending(ctx context.Context, batchID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM phase_change_requests WHERE batch_id = $1 AND status = 'pending')`
	var ok bool
	err := r.pool.QueryRow(ctx, q, batchID).Scan(&ok)
	return ok, err
}

// Reject marks a pending request rejected.
func (r *Repository) Reject(ctx context.Context, id, reviewerID uuid.UUID, comments string) (*models.PhaseChangeRequest, error) {
	q := `UPDATE phase_change_requests
		SET status = 'rejected', reviewed_by_id = $2, reviewed_at = NOW(),
			comments = COALESCE(NULLIF($3,''), comments), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + requestColumns
	req, err := scanRequest(r.pool.QueryRow(ctx, q, id, reviewerID, comments))
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Approve marks a pending request approved and moves the batch to the target
// status in the same transaction, then returns the request and the updated
// batch status read back inside that transaction.
func (r *Repository) Approve(ctx context.Context, id, reviewerID uuid.UUID, comments string) (*models.PhaseChangeRequest, models.BatchStatus, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback(ctx)

	q := `UPDATE phase_change_requests
		SET status = 'approved', reviewed_by_id = $2, reviewed_at = NOW(),
			comments = COALESCE(NULLIF($3,''), comments), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + requestColumns
	req, err := scanRequest(tx.QueryRow(ctx, q, id, reviewerID, comments))
	if err != nil {
		return nil, "", fmt.Errorf("request not pending: %w", err)
	}

	const bq = `UPDATE batches SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3 RETURNING status`
	var newStatus string
	if err := tx.QueryRow(ctx, bq, req.BatchID, string(req.ToStatus), string(req.FromStatus)).Scan(&newStatus); err != nil {
		return nil, "", fmt.Errorf("batch no longer in %s: %w", req.FromStatus, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", err
	}
	return &req, models.BatchStatus(newStatus), nil
}

// Delete removes a pending request. Reviewed requests are immutable history.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM phase_change_requests WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("no pending request with id %s", id)
	}
	return nil
}
