package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrganizationSettings holds per-tenant configuration.
type OrganizationSettings struct {
	OrganizationID  uuid.UUID `json:"organization_id"`
	Timezone        string    `json:"timezone"`
	WeeklyOffDays   []string  `json:"weekly_off_days"` // e.g. ["saturday","sunday"]
	DefaultCapacity int       `json:"default_capacity"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LineOfBusiness groups processes under an organization.
type LineOfBusiness struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Process is a trainable process within a line of business.
type Process struct {
	ID               uuid.UUID `json:"id"`
	LineOfBusinessID uuid.UUID `json:"line_of_business_id"`
	Name             string    `json:"name"`
	// Planned number of days per phase, used to prefill batch phase dates.
	InductionDays        int       `json:"induction_days"`
	TrainingDays         int       `json:"training_days"`
	CertificationDays    int       `json:"certification_days"`
	OJTDays              int       `json:"ojt_days"`
	OJTCertificationDays int       `json:"ojt_certification_days"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Holiday is a non-working day for an organization; rollups skip these dates.
type Holiday struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Date           time.Time `json:"date"`
	Name           string    `json:"name"`
	Recurring      bool      `json:"recurring"` // same month/day every year
	CreatedAt      time.Time `json:"created_at"`
}
