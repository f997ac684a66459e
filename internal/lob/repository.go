package lob

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitrack/backend/internal/models"
)

// Repository handles line of business and process persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a line of business repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a line of business.
func (r *Repository) Create(ctx context.Context, l *models.LineOfBusiness) error {
	const q = `INSERT INTO line_of_businesses (organization_id, name, description)
		VALUES ($1, $2, NULLIF($3,''))
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, l.OrganizationID, l.Name, l.Description).Scan(&l.ID, &l.CreatedAt)
}

// ListByOrganization returns all lines of business of an organization.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.LineOfBusiness, error) {
	const q = `SELECT id, organization_id, name, COALESCE(description,''), created_at
		FROM line_of_businesses WHERE organization_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.LineOfBusiness
	for rows.Next() {
		var l models.LineOfBusiness
		if err := rows.Scan(&l.ID, &l.OrganizationID, &l.Name, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Update renames a line of business.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description string) (*models.LineOfBusiness, error) {
	const q = `UPDATE line_of_businesses SET name = $2, description = NULLIF($3,'')
		WHERE id = $1
		RETURNING id, organization_id, name, COALESCE(description,''), created_at`
	var l models.LineOfBusiness
	err := r.pool.QueryRow(ctx, q, id, name, description).
		Scan(&l.ID, &l.OrganizationID, &l.Name, &l.Description, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Delete removes a line of business and its processes.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM line_of_businesses WHERE id = $1`, id)
	return err
}

// OrganizationOf returns the owning organization of a line of business.
func (r *Repository) OrganizationOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var orgID uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT organization_id FROM line_of_businesses WHERE id = $1`, id).Scan(&orgID)
	return orgID, err
}

// CreateProcess inserts a process under a line of business.
func (r *Repository) CreateProcess(ctx context.Context, p *models.Process) error {
	const q = `INSERT INTO processes (line_of_business_id, name, induction_days, training_days, certification_days, ojt_days, ojt_certification_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, p.LineOfBusinessID, p.Name, p.InductionDays, p.TrainingDays,
		p.CertificationDays, p.OJTDays, p.OJTCertificationDays).Scan(&p.ID, &p.CreatedAt)
}

// ListProcesses returns the processes of a line of business.
func (r *Repository) ListProcesses(ctx context.Context, lobID uuid.UUID) ([]models.Process, error) {
	const q = `SELECT id, line_of_business_id, name, induction_days, training_days, certification_days, ojt_days, ojt_certification_days, created_at
		FROM processes WHERE line_of_business_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, lobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Process
	for rows.Next() {
		var p models.Process
		if err := rows.Scan(&p.ID, &p.LineOfBusinessID, &p.Name, &p.InductionDays, &p.TrainingDays,
			&p.CertificationDays, &p.OJTDays, &p.OJTCertificationDays, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// UpdateProcess patches a process's planned phase durations.
func (r *Repository) UpdateProcess(ctx context.Context, p *models.Process) error {
	const q = `UPDATE processes SET name = $2, induction_days = $3, training_days = $4,
		certification_days = $5, ojt_days = $6, ojt_certification_days = $7
		WHERE id = $1 RETURNING line_of_business_id, created_at`
	return r.pool.QueryRow(ctx, q, p.ID, p.Name, p.InductionDays, p.TrainingDays,
		p.CertificationDays, p.OJTDays, p.OJTCertificationDays).Scan(&p.LineOfBusinessID, &p.CreatedAt)
}

// DeleteProcess removes a process.
func (r *Repository) DeleteProcess(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM processes WHERE id = $1`, id)
	return err
}

// ResolveNames maps a line of business name and optional process name to IDs
// inside an organization. Matching is case-insensitive. A missing name returns
// nil pointers rather than an error so callers can report it per row.
func (r *Repository) ResolveNames(ctx context.Context, orgID uuid.UUID, lobName, processName string) (*uuid.UUID, *uuid.UUID, error) {
	if strings.TrimSpace(lobName) == "" {
		return nil, nil, nil
	}
	const q = `SELECT id FROM line_of_businesses WHERE organization_id = $1 AND lower(name) = lower($2)`
	var lobID uuid.UUID
	if err := r.pool.QueryRow(ctx, q, orgID, lobName).Scan(&lobID); err != nil {
		return nil, nil, nil
	}
	if strings.TrimSpace(processName) == "" {
		return &lobID, nil, nil
	}
	const pq = `SELECT id FROM processes WHERE line_of_business_id = $1 AND lower(name) = lower($2)`
	var procID uuid.UUID
	if err := r.pool.QueryRow(ctx, pq, lobID, processName).Scan(&procID); err != nil {
		return &lobID, nil, nil
	}
	return &lobID, &procID, nil
}
