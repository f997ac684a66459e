package certifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitrack/backend/internal/models"
)

const evalColumns = `e.id, e.batch_id, e.trainee_id, u.full_name, e.type, e.status, e.score,
	e.evaluator_id, e.evaluated_at, COALESCE(e.template_name,''), e.created_at, e.updated_at`

// Repository handles certification evaluation and refresher persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEval(row interface{ Scan(...any) error }) (models.CertificationEvaluation, error) {
	var e models.CertificationEvaluation
	var typ, status string
	err := row.Scan(&e.ID, &e.BatchID, &e.TraineeID, &e.TraineeName, &typ, &status, &e.Score,
		&e.EvaluatorID, &e.EvaluatedAt, &e.TemplateName, &e.CreatedAt, &e.UpdatedAt)
	e.Type = models.EvaluationType(typ)
	e.Status = models.EvaluationStatus(status)
	return e, err
}

// Create inserts a pending evaluation.
func (r *Repository) Create(ctx context.Context, e *models.CertificationEvaluation) error {
	const q = `INSERT INTO certification_evaluations (batch_id, trainee_id, type, template_name)
		VALUES ($1, $2, $3, NULLIF($4,''))
		RETURNING id, status, created_at, updated_at`
	var status string
	err := r.pool.QueryRow(ctx, q, e.BatchID, e.TraineeID, string(e.Type), e.TemplateName).
		Scan(&e.ID, &status, &e.CreatedAt, &e.UpdatedAt)
	e.Status = models.EvaluationStatus(status)
	return err
}

// ListByBatch returns a batch's evaluations, optionally filtered by status
// and type.
func (r *Repository) ListByBatch(ctx context.Context, batchID uuid.UUID, status, typ string) ([]models.CertificationEvaluation, error) {
	q := `SELECT ` + evalColumns + ` FROM certification_evaluations e
		JOIN users u ON u.id = e.trainee_id
		WHERE e.batch_id = $1`
	args := []any{batchID}
	if status != "" {
		args = append(args, status)
		q += fmt.Sprintf(" AND e.status = $%d", len(args))
	}
	if typ != "" {
		args = append(args, typ)
		q += fmt.Sprintf(" AND e.type = $%d", len(args))
	}
	q += ` ORDER BY u.full_name, e.created_at`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.CertificationEvaluation
	for rows.Next() {
		e, err := scanEval(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// RecordResult writes an evaluation outcome.
func (r *Repository) RecordResult(ctx context.Context, id, evaluatorID uuid.UUID, status models.EvaluationStatus, score *float64) (*models.CertificationEvaluation, error) {
	q := `UPDATE certification_evaluations e SET status = $2, score = $3,
		evaluator_id = $4, evaluated_at = NOW(), updated_at = NOW()
		FROM users u
		WHERE e.id = $1 AND u.id = e.trainee_id
		RETURNING ` + evalColumns
	e, err := scanEval(r.pool.QueryRow(ctx, q, id, string(status), score, evaluatorID))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// BatchOf returns the batch an evaluation belongs to.
func (r *Repository) BatchOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var batchID uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT batch_id FROM certification_evaluations WHERE id = $1`, id).Scan(&batchID)
	return batchID, err
}

// PassRate returns passed and evaluated counts for a batch and evaluation
// type.
func (r *Repository) PassRate(ctx context.Context, batchID uuid.UUID, typ models.EvaluationType) (passed, evaluated int, err error) {
	const q = `SELECT COUNT(*) FILTER (WHERE status = 'passed'),
		COUNT(*) FILTER (WHERE status IN ('passed','failed'))
		FROM certification_evaluations WHERE batch_id = $1 AND type = $2`
	err = r.pool.QueryRow(ctx, q, batchID, string(typ)).Scan(&passed, &evaluated)
	return passed, evaluated, err
}

// CreateRefresher schedules a refresher, deactivating any previous active one
// for the same trainee and batch.
func (r *Repository) CreateRefresher(ctx context.Context, ref *models.Refresher) error {
	const deactivate = `UPDATE refreshers SET active = FALSE, updated_at = NOW()
		WHERE batch_id = $1 AND trainee_id = $2 AND active`
	if _, err := r.pool.Exec(ctx, deactivate, ref.BatchID, ref.TraineeID); err != nil {
		return err
	}
	const q = `INSERT INTO refreshers (batch_id, trainee_id, reason, start_date, end_date, scheduled_by_id)
		VALUES ($1, $2, NULLIF($3,''), $4, $5, $6)
		RETURNING id, active, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, ref.BatchID, ref.TraineeID, ref.Reason,
		ref.StartDate, ref.EndDate, ref.ScheduledByID).
		Scan(&ref.ID, &ref.Active, &ref.CreatedAt, &ref.UpdatedAt)
}

// ListRefreshers returns a batch's refreshers, active first then newest.
func (r *Repository) ListRefreshers(ctx context.Context, batchID uuid.UUID) ([]models.Refresher, error) {
	const q = `SELECT id, batch_id, trainee_id, COALESCE(reason,''), start_date, end_date, scheduled_by_id, active, created_at, updated_at
		FROM refreshers WHERE batch_id = $1 ORDER BY active DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, q, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Refresher
	for rows.Next() {
		var ref models.Refresher
		if err := rows.Scan(&ref.ID, &ref.BatchID, &ref.TraineeID, &ref.Reason, &ref.StartDate,
			&ref.EndDate, &ref.ScheduledByID, &ref.Active, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, ref)
	}
	return list, rows.Err()
}

// SetRefresherWindow updates the dates of an active refresher.
func (r *Repository) SetRefresherWindow(ctx context.Context, id uuid.UUID, start, end *time.Time) (*models.Refresher, error) {
	const q = `UPDATE refreshers SET start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $1 AND active
		RETURNING id, batch_id, trainee_id, COALESCE(reason,''), start_date, end_date, scheduled_by_id, active, created_at, updated_at`
	var ref models.Refresher
	err := r.pool.QueryRow(ctx, q, id, start, end).Scan(&ref.ID, &ref.BatchID, &ref.TraineeID,
		&ref.Reason, &ref.StartDate, &ref.EndDate, &ref.ScheduledByID, &ref.Active, &ref.CreatedAt, &ref.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// SetActiveRefresherWindow adjusts the dates of the trainee's active
// refresher in the batch.
func (r *Repository) SetActiveRefresherWindow(ctx context.Context, batchID, traineeID uuid.UUID, start, end *time.Time) (*models.Refresher, error) {
	const q = `UPDATE refreshers SET start_date = $3, end_date = $4, updated_at = NOW()
		WHERE batch_id = $1 AND trainee_id = $2 AND active
		RETURNING id, batch_id, trainee_id, COALESCE(reason,''), start_date, end_date, scheduled_by_id, active, created_at, updated_at`
	var ref models.Refresher
	err := r.pool.QueryRow(ctx, q, batchID, traineeID, start, end).Scan(&ref.ID, &ref.BatchID, &ref.TraineeID,
		&ref.Reason, &ref.StartDate, &ref.EndDate, &ref.ScheduledByID, &ref.Active, &ref.CreatedAt, &ref.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
