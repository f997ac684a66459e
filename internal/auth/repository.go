package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitrack/backend/internal/models"
)

const userColumns = `id, organization_id, email, password_hash, full_name, COALESCE(employee_id,''), role,
	COALESCE(location,''), line_of_business_id, process_id, manager_id, active, created_at, updated_at`

// Repository handles user persistence for authentication.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.OrganizationID, &u.Email, &u.Password, &u.FullName, &u.EmployeeID, &u.Role,
		&u.Location, &u.LineOfBusinessID, &u.ProcessID, &u.ManagerID, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, q, email))
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (organization_id, email, password_hash, full_name, employee_id, role, location, line_of_business_id, process_id, manager_id)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), $8, $9, $10)
		RETURNING id, active, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, u.OrganizationID, u.Email, u.Password, u.FullName, u.EmployeeID,
		string(u.Role), u.Location, u.LineOfBusinessID, u.ProcessID, u.ManagerID).
		Scan(&u.ID, &u.Active, &u.CreatedAt, &u.UpdatedAt)
}
