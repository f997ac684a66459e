package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitrack/backend/internal/models"
)

const publicColumns = `id, organization_id, email, full_name, COALESCE(employee_id,''), role,
	COALESCE(location,''), line_of_business_id, process_id, manager_id, active, created_at`

// Repository handles user persistence for the management endpoints.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanPublic(row interface{ Scan(...any) error }) (models.UserPublic, error) {
	var u models.UserPublic
	var role string
	err := row.Scan(&u.ID, &u.OrganizationID, &u.Email, &u.FullName, &u.EmployeeID, &role,
		&u.Location, &u.LineOfBusinessID, &u.ProcessID, &u.ManagerID, &u.Active, &u.CreatedAt)
	u.Role = models.Role(role)
	return u, err
}

// ListByOrganization returns all users of an organization.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.UserPublic, error) {
	const q = `SELECT ` + publicColumns + ` FROM users WHERE organization_id = $1 ORDER BY full_name, email`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		u, err := scanPublic(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetPublic returns one user without sensitive fields.
func (r *Repository) GetPublic(ctx context.Context, id uuid.UUID) (*models.UserPublic, error) {
	const q = `SELECT ` + publicColumns + ` FROM users WHERE id = $1`
	u, err := scanPublic(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindIDByEmail returns the user ID for an email within an organization, or
// uuid.Nil when not found.
func (r *Repository) FindIDByEmail(ctx context.Context, orgID uuid.UUID, email string) (uuid.UUID, error) {
	const q = `SELECT id FROM users WHERE organization_id = $1 AND lower(email) = lower($2)`
	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, q, orgID, email).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Create inserts a new user with a password hash.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (organization_id, email, password_hash, full_name, employee_id, role, location, line_of_business_id, process_id, manager_id)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), $8, $9, $10)
		RETURNING id, active, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, u.OrganizationID, u.Email, u.Password, u.FullName, u.EmployeeID,
		string(u.Role), u.Location, u.LineOfBusinessID, u.ProcessID, u.ManagerID).
		Scan(&u.ID, &u.Active, &u.CreatedAt, &u.UpdatedAt)
}

// UpdateFields holds the patchable fields for a user. Nil pointers are left
// untouched.
type UpdateFields struct {
	FullName         *string
	EmployeeID       *string
	Role             *string
	Location         *string
	LineOfBusinessID *uuid.UUID
	ProcessID        *uuid.UUID
	ManagerID        *uuid.UUID
	Active           *bool
}

// Update patches a user and returns the updated public record.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, f UpdateFields) (*models.UserPublic, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.FullName != nil {
		add("full_name", *f.FullName)
	}
	if f.EmployeeID != nil {
		add("employee_id", *f.EmployeeID)
	}
	if f.Role != nil {
		add("role", *f.Role)
	}
	if f.Location != nil {
		add("location", *f.Location)
	}
	if f.LineOfBusinessID != nil {
		add("line_of_business_id", *f.LineOfBusinessID)
	}
	if f.ProcessID != nil {
		add("process_id", *f.ProcessID)
	}
	if f.ManagerID != nil {
		add("manager_id", *f.ManagerID)
	}
	if f.Active != nil {
		add("active", *f.Active)
	}
	q := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + publicColumns
	u, err := scanPublic(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Deactivate marks a user inactive. Users are never hard-deleted so that
// attendance and evaluation history keeps its references.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE users SET active = FALSE, updated_at = NOW() WHERE id = $1`
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}
