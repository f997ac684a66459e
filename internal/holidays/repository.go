package holidays

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitrack/backend/internal/models"
)

// Repository handles holiday calendar persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a holiday.
func (r *Repository) Create(ctx context.Context, h *models.Holiday) error {
	const q = `INSERT INTO holidays (organization_id, name, date, recurring)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, h.OrganizationID, h.Name, h.Date, h.Recurring).Scan(&h.ID, &h.CreatedAt)
}

// ListByOrganization returns an organization's holidays ordered by date.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Holiday, error) {
	const q = `SELECT id, organization_id, name, date, recurring, created_at
		FROM holidays WHERE organization_id = $1 ORDER BY date`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Holiday
	for rows.Next() {
		var h models.Holiday
		if err := rows.Scan(&h.ID, &h.OrganizationID, &h.Name, &h.Date, &h.Recurring, &h.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

// Update patches a holiday.
func (r *Repository) Update(ctx context.Context, h *models.Holiday) error {
	const q = `UPDATE holidays SET name = $2, date = $3, recurring = $4
		WHERE id = $1 RETURNING organization_id, created_at`
	return r.pool.QueryRow(ctx, q, h.ID, h.Name, h.Date, h.Recurring).Scan(&h.OrganizationID, &h.CreatedAt)
}

// Delete removes a holiday.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	return err
}
