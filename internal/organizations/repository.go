package organizations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitrack/backend/internal/models"
)

// Repository handles organization and organization_settings persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create creates an organization with default settings.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	const q = `INSERT INTO organizations (name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, q, org.Name, org.Slug).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return err
	}
	const sq = `INSERT INTO organization_settings (organization_id) VALUES ($1)
		ON CONFLICT (organization_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, sq, org.ID)
	return err
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, slug, created_at, updated_at FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetSettings returns the organization's settings, creating defaults if absent.
func (r *Repository) GetSettings(ctx context.Context, orgID uuid.UUID) (*models.OrganizationSettings, error) {
	const q = `INSERT INTO organization_settings (organization_id) VALUES ($1)
		ON CONFLICT (organization_id) DO UPDATE SET organization_id = EXCLUDED.organization_id
		RETURNING organization_id, timezone, weekly_off_days, default_capacity, updated_at`
	var s models.OrganizationSettings
	err := r.pool.QueryRow(ctx, q, orgID).
		Scan(&s.OrganizationID, &s.Timezone, &s.WeeklyOffDays, &s.DefaultCapacity, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSettings patches the organization's settings.
func (r *Repository) UpdateSettings(ctx context.Context, s *models.OrganizationSettings) error {
	const q = `UPDATE organization_settings
		SET timezone = $2, weekly_off_days = $3, default_capacity = $4, updated_at = NOW()
		WHERE organization_id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, s.OrganizationID, s.Timezone, s.WeeklyOffDays, s.DefaultCapacity).
		Scan(&s.UpdatedAt)
}

// IsMember returns true if the user belongs to the organization.
func (r *Repository) IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	const q = `SELECT 1 FROM users WHERE id = $1 AND organization_id = $2 AND active`
	var one int
	if err := r.pool.QueryRow(ctx, q, userID, orgID).Scan(&one); err != nil {
		return false, nil
	}
	return true, nil
}

// HolidayDates returns the set of holiday dates (YYYY-MM-DD) for the org,
// recurring holidays expanded for the given year.
func (r *Repository) HolidayDates(ctx context.Context, orgID uuid.UUID, year int) (map[string]struct{}, error) {
	const q = `SELECT to_char(date, 'YYYY-MM-DD'), recurring, to_char(date, 'MM-DD') FROM holidays WHERE organization_id = $1`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dates := make(map[string]struct{})
	for rows.Next() {
		var full, monthDay string
		var recurring bool
		if err := rows.Scan(&full, &recurring, &monthDay); err != nil {
			return nil, err
		}
		dates[full] = struct{}{}
		if recurring {
			dates[fmt.Sprintf("%04d-%s", year, monthDay)] = struct{}{}
		}
	}
	return dates, rows.Err()
}
