package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitrack/backend/internal/models"
)

// Repository handles attendance mark and aggregate persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertMark writes one trainee's mark for one day. Re-marking the same
// trainee and date replaces the previous status.
func (r *Repository) UpsertMark(ctx context.Context, m *models.AttendanceMark) error {
	const q = `INSERT INTO attendance_marks (organization_id, batch_id, trainee_id, date, status, phase, marked_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (batch_id, trainee_id, date)
		DO UPDATE SET status = EXCLUDED.status, phase = EXCLUDED.phase,
			marked_by_id = EXCLUDED.marked_by_id, updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.OrganizationID, m.BatchID, m.TraineeID, m.Date,
		string(m.Status), m.Phase, m.MarkedByID).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// MarksForDay returns all marks of a batch on one date.
func (r *Repository) MarksForDay(ctx context.Context, batchID uuid.UUID, date time.Time) ([]models.AttendanceMark, error) {
	const q = `SELECT id, organization_id, batch_id, trainee_id, date, status, phase, marked_by_id, created_at, updated_at
		FROM attendance_marks WHERE batch_id = $1 AND date = $2`
	rows, err := r.pool.Query(ctx, q, batchID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AttendanceMark
	for rows.Next() {
		var m models.AttendanceMark
		var status string
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.BatchID, &m.TraineeID, &m.Date,
			&status, &m.Phase, &m.MarkedByID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Status = models.AttendanceStatus(status)
		list = append(list, m)
	}
	return list, rows.Err()
}

// UpsertDaily writes the aggregated counts for one batch-day. The rollup
// worker is the only writer.
func (r *Repository) UpsertDaily(ctx context.Context, orgID, batchID uuid.UUID, d *models.DailyAttendance) error {
	const q = `INSERT INTO daily_attendance (organization_id, batch_id, date, present_count, absent_count, late_count, leave_count, total_trainees, attendance_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (batch_id, date)
		DO UPDATE SET present_count = EXCLUDED.present_count, absent_count = EXCLUDED.absent_count,
			late_count = EXCLUDED.late_count, leave_count = EXCLUDED.leave_count,
			total_trainees = EXCLUDED.total_trainees, attendance_rate = EXCLUDED.attendance_rate`
	_, err := r.pool.Exec(ctx, q, orgID, batchID, d.Date, d.PresentCount, d.AbsentCount,
		d.LateCount, d.LeaveCount, d.TotalTrainees, d.AttendanceRate)
	return err
}

// DailyHistory returns a batch's per-day aggregates, oldest first, capped at
// limit when limit is positive.
func (r *Repository) DailyHistory(ctx context.Context, batchID uuid.UUID, limit int) ([]models.DailyAttendance, error) {
	q := `SELECT date, present_count, absent_count, late_count, leave_count, total_trainees, attendance_rate
		FROM daily_attendance WHERE batch_id = $1 ORDER BY date`
	args := []any{batchID}
	if limit > 0 {
		q += ` DESC LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.DailyAttendance
	for rows.Next() {
		var d models.DailyAttendance
		if err := rows.Scan(&d.Date, &d.PresentCount, &d.AbsentCount, &d.LateCount,
			&d.LeaveCount, &d.TotalTrainees, &d.AttendanceRate); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	if limit > 0 {
		// reverse back to chronological order
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
	}
	return list, rows.Err()
}

// Aggregate returns batch-lifetime counts summed over the daily rows, with
// the rate recomputed from the summed counts.
func (r *Repository) Aggregate(ctx context.Context, batchID uuid.UUID) (*models.AttendanceAggregate, error) {
	const q = `SELECT COALESCE(SUM(present_count),0), COALESCE(SUM(absent_count),0),
		COALESCE(SUM(late_count),0), COALESCE(SUM(leave_count),0),
		COALESCE(SUM(present_count + absent_count + late_count + leave_count),0)
		FROM daily_attendance WHERE batch_id = $1`
	agg := &models.AttendanceAggregate{BatchID: batchID}
	err := r.pool.QueryRow(ctx, q, batchID).Scan(&agg.PresentCount, &agg.AbsentCount,
		&agg.LateCount, &agg.LeaveCount, &agg.TotalRecords)
	if err != nil {
		return nil, err
	}
	return agg, nil
}
