package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role in the platform hierarchy.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleManager        Role = "manager"
	RoleTrainer        Role = "trainer"
	RoleQualityAnalyst Role = "quality_analyst"
	RoleTrainee        Role = "trainee"
)

// RoleRequiresLineOfBusiness reports whether the role works inside a line of
// business. Trainers, quality analysts and trainees do; admins and managers
// operate across the organization.
func RoleRequiresLineOfBusiness(r Role) bool {
	switch r {
	case RoleTrainer, RoleQualityAnalyst, RoleTrainee:
		return true
	}
	return false
}

// ValidRole reports whether s is a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleTrainer, RoleQualityAnalyst, RoleTrainee:
		return true
	}
	return false
}

// User represents a platform user.
type User struct {
	ID               uuid.UUID  `json:"id"`
	OrganizationID   *uuid.UUID `json:"organization_id,omitempty"`
	Email            string     `json:"email"`
	Password         string     `json:"-"`
	FullName         string     `json:"full_name"`
	EmployeeID       string     `json:"employee_id"`
	Role             Role       `json:"role"`
	Location         string     `json:"location,omitempty"`
	LineOfBusinessID *uuid.UUID `json:"line_of_business_id,omitempty"`
	ProcessID        *uuid.UUID `json:"process_id,omitempty"`
	ManagerID        *uuid.UUID `json:"manager_id,omitempty"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID               uuid.UUID  `json:"id"`
	OrganizationID   *uuid.UUID `json:"organization_id,omitempty"`
	Email            string     `json:"email"`
	FullName         string     `json:"full_name"`
	EmployeeID       string     `json:"employee_id"`
	Role             Role       `json:"role"`
	Location         string     `json:"location,omitempty"`
	LineOfBusinessID *uuid.UUID `json:"line_of_business_id,omitempty"`
	ProcessID        *uuid.UUID `json:"process_id,omitempty"`
	ManagerID        *uuid.UUID `json:"manager_id,omitempty"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:               u.ID,
		OrganizationID:   u.OrganizationID,
		Email:            u.Email,
		FullName:         u.FullName,
		EmployeeID:       u.EmployeeID,
		Role:             u.Role,
		Location:         u.Location,
		LineOfBusinessID: u.LineOfBusinessID,
		ProcessID:        u.ProcessID,
		ManagerID:        u.ManagerID,
		Active:           u.Active,
		CreatedAt:        u.CreatedAt,
	}
}
