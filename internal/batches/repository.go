package batches

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitrack/backend/internal/models"
)

const batchColumns = `b.id, b.organization_id, b.name, b.status, b.start_date, b.end_date,
	b.capacity_limit, b.trainer_id, b.line_of_business_id, b.process_id, COALESCE(b.location,''),
	b.induction_start, b.induction_end, b.training_start, b.training_end,
	b.certification_start, b.certification_end, b.ojt_start, b.ojt_end,
	b.ojt_certification_start, b.ojt_certification_end,
	b.created_at, b.updated_at,
	(SELECT COUNT(*) FROM batch_trainees bt WHERE bt.batch_id = b.id)`

// Repository handles batch and roster persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanBatch(row interface{ Scan(...any) error }) (models.Batch, error) {
	var b models.Batch
	var status string
	err := row.Scan(&b.ID, &b.OrganizationID, &b.Name, &status, &b.StartDate, &b.EndDate,
		&b.CapacityLimit, &b.TrainerID, &b.LineOfBusinessID, &b.ProcessID, &b.Location,
		&b.InductionStart, &b.InductionEnd, &b.TrainingStart, &b.TrainingEnd,
		&b.CertificationStart, &b.CertificationEnd, &b.OJTStart, &b.OJTEnd,
		&b.OJTCertificationStart, &b.OJTCertificationEnd,
		&b.CreatedAt, &b.UpdatedAt, &b.UserCount)
	b.Status = models.BatchStatus(status)
	return b, err
}

// Create inserts a batch.
func (r *Repository) Create(ctx context.Context, b *models.Batch) error {
	const q = `INSERT INTO batches (organization_id, name, status, start_date, end_date, capacity_limit,
		trainer_id, line_of_business_id, process_id, location,
		induction_start, induction_end, training_start, training_end,
		certification_start, certification_end, ojt_start, ojt_end,
		ojt_certification_start, ojt_certification_end)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, b.OrganizationID, b.Name, string(b.Status), b.StartDate, b.EndDate,
		b.CapacityLimit, b.TrainerID, b.LineOfBusinessID, b.ProcessID, b.Location,
		b.InductionStart, b.InductionEnd, b.TrainingStart, b.TrainingEnd,
		b.CertificationStart, b.CertificationEnd, b.OJTStart, b.OJTEnd,
		b.OJTCertificationStart, b.OJTCertificationEnd).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns one batch with its enrolled trainee count.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	q := `SELECT ` + batchColumns + ` FROM batches b WHERE b.id = $1`
	b, err := scanBatch(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByOrganization returns an organization's batches, optionally filtered
// by status, newest start first.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID, status string) ([]models.Batch, error) {
	q := `SELECT ` + batchColumns + ` FROM batches b WHERE b.organization_id = $1`
	args := []any{orgID}
	if status != "" {
		args = append(args, status)
		q += fmt.Sprintf(" AND b.status = $%d", len(args))
	}
	q += ` ORDER BY b.start_date DESC, b.name`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// UpdateFields holds the patchable batch fields. Nil pointers are left
// untouched. Phase window dates are patched through PhaseDates. Status is
// absent on purpose; it moves only through the phase change request
// workflow, which applies its own guarded transition.
type UpdateFields struct {
	Name          *string
	StartDate     *time.Time
	EndDate       *time.Time
	CapacityLimit *int
	TrainerID     *uuid.UUID
	Location      *string
	PhaseDates    map[string]*time.Time
}

var phaseDateColumns = map[string]bool{
	"induction_start": true, "induction_end": true,
	"training_start": true, "training_end": true,
	"certification_start": true, "certification_end": true,
	"ojt_start": true, "ojt_end": true,
	"ojt_certification_start": true, "ojt_certification_end": true,
}

// Update patches a batch and returns the updated row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, f UpdateFields) (*models.Batch, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.Name != nil {
		add("name", *f.Name)
	}
	if f.StartDate != nil {
		add("start_date", *f.StartDate)
	}
	if f.EndDate != nil {
		add("end_date", *f.EndDate)
	}
	if f.CapacityLimit != nil {
		add("capacity_limit", *f.CapacityLimit)
	}
	if f.TrainerID != nil {
		add("trainer_id", *f.TrainerID)
	}
	if f.Location != nil {
		add("location", *f.Location)
	}
	for col, v := range f.PhaseDates {
		if !phaseDateColumns[col] {
			return nil, fmt.Errorf("unknown phase date field %q", col)
		}
		add(col, v)
	}
	q := `UPDATE batches b SET ` + strings.Join(sets, ", ") + ` WHERE b.id = $1 RETURNING ` + batchColumns
	b, err := scanBatch(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes a batch and its roster.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	return err
}

// Enroll adds users to a batch roster, ignoring ones already enrolled.
// Returns the number of newly enrolled trainees.
func (r *Repository) Enroll(ctx context.Context, batchID uuid.UUID, userIDs []uuid.UUID) (int, error) {
	const q = `INSERT INTO batch_trainees (batch_id, user_id) VALUES ($1, $2)
		ON CONFLICT (batch_id, user_id) DO NOTHING`
	added := 0
	for _, userID := range userIDs {
		ct, err := r.pool.Exec(ctx, q, batchID, userID)
		if err != nil {
			return added, err
		}
		added += int(ct.RowsAffected())
	}
	return added, nil
}

// Unenroll removes a user from a batch roster.
func (r *Repository) Unenroll(ctx context.Context, batchID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM batch_trainees WHERE batch_id = $1 AND user_id = $2`, batchID, userID)
	return err
}

// Roster returns the batch's trainees joined with their attendance status for
// a given date. Status is nil for trainees with no mark on that date.
func (r *Repository) Roster(ctx context.Context, batchID uuid.UUID, date time.Time) ([]models.Trainee, error) {
	const q = `SELECT u.id, bt.batch_id, u.full_name, COALESCE(u.employee_id,''), u.email, am.status, bt.enrolled_at
		FROM batch_trainees bt
		JOIN users u ON u.id = bt.user_id
		LEFT JOIN attendance_marks am ON am.batch_id = bt.batch_id AND am.trainee_id = bt.user_id AND am.date = $2
		WHERE bt.batch_id = $1
		ORDER BY u.full_name, u.email`
	rows, err := r.pool.Query(ctx, q, batchID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Trainee
	for rows.Next() {
		var t models.Trainee
		var status *string
		if err := rows.Scan(&t.ID, &t.BatchID, &t.FullName, &t.EmployeeID, &t.Email, &status, &t.EnrolledAt); err != nil {
			return nil, err
		}
		if status != nil {
			s := models.AttendanceStatus(*status)
			t.Status = &s
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// IsEnrolled reports whether a user is on a batch roster.
func (r *Repository) IsEnrolled(ctx context.Context, batchID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM batch_trainees WHERE batch_id = $1 AND user_id = $2)`
	var ok bool
	err := r.pool.QueryRow(ctx, q, batchID, userID).Scan(&ok)
	return ok, err
}

// BatchRef identifies a batch together with its organization.
type BatchRef struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
}

// ActiveRefs returns every batch currently in a phase, across organizations.
// The rollup scanner uses this to enqueue daily recomputes.
func (r *Repository) ActiveRefs(ctx context.Context) ([]BatchRef, error) {
	const q = `SELECT id, organization_id FROM batches WHERE status NOT IN ('planned','completed')`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var refs []BatchRef
	for rows.Next() {
		var ref BatchRef
		if err := rows.Scan(&ref.ID, &ref.OrganizationID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// OrganizationOf returns the owning organization of a batch.
func (r *Repository) OrganizationOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var orgID uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT organization_id FROM batches WHERE id = $1`, id).Scan(&orgID)
	return orgID, err
}
