package models

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus is the lifecycle status of a batch. Between "planned" and
// "completed" it mirrors the name of the phase the batch is currently in.
type BatchStatus string

const (
	BatchPlanned          BatchStatus = "planned"
	BatchInduction        BatchStatus = "induction"
	BatchTraining         BatchStatus = "training"
	BatchCertification    BatchStatus = "certification"
	BatchOJT              BatchStatus = "ojt"
	BatchOJTCertification BatchStatus = "ojt_certification"
	BatchCompleted        BatchStatus = "completed"
)

// PhaseNames lists the five trackable phases in lifecycle order.
var PhaseNames = []string{
	string(BatchInduction),
	string(BatchTraining),
	string(BatchCertification),
	string(BatchOJT),
	string(BatchOJTCertification),
}

// ValidBatchStatus reports whether s is a known batch status.
func ValidBatchStatus(s string) bool {
	switch BatchStatus(s) {
	case BatchPlanned, BatchInduction, BatchTraining, BatchCertification, BatchOJT, BatchOJTCertification, BatchCompleted:
		return true
	}
	return false
}

// Batch represents a training cohort.
type Batch struct {
	ID               uuid.UUID   `json:"id"`
	OrganizationID   uuid.UUID   `json:"organization_id"`
	Name             string      `json:"name"`
	Status           BatchStatus `json:"status"`
	StartDate        time.Time   `json:"start_date"`
	EndDate          time.Time   `json:"end_date"`
	CapacityLimit    int         `json:"capacity_limit"`
	UserCount        int         `json:"user_count"`
	TrainerID        *uuid.UUID  `json:"trainer_id,omitempty"`
	LineOfBusinessID *uuid.UUID  `json:"line_of_business_id,omitempty"`
	ProcessID        *uuid.UUID  `json:"process_id,omitempty"`
	Location         string      `json:"location,omitempty"`

	// Per-phase windows; an absent pair means the phase is not planned
	// for this batch.
	InductionStart        *time.Time `json:"induction_start,omitempty"`
	InductionEnd          *time.Time `json:"induction_end,omitempty"`
	TrainingStart         *time.Time `json:"training_start,omitempty"`
	TrainingEnd           *time.Time `json:"training_end,omitempty"`
	CertificationStart    *time.Time `json:"certification_start,omitempty"`
	CertificationEnd      *time.Time `json:"certification_end,omitempty"`
	OJTStart              *time.Time `json:"ojt_start,omitempty"`
	OJTEnd                *time.Time `json:"ojt_end,omitempty"`
	OJTCertificationStart *time.Time `json:"ojt_certification_start,omitempty"`
	OJTCertificationEnd   *time.Time `json:"ojt_certification_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PhaseWindow returns the start/end pair for a named phase. Unknown names
// return nil pointers.
func (b *Batch) PhaseWindow(name string) (start, end *time.Time) {
	switch BatchStatus(name) {
	case BatchInduction:
		return b.InductionStart, b.InductionEnd
	case BatchTraining:
		return b.TrainingStart, b.TrainingEnd
	case BatchCertification:
		return b.CertificationStart, b.CertificationEnd
	case BatchOJT:
		return b.OJTStart, b.OJTEnd
	case BatchOJTCertification:
		return b.OJTCertificationStart, b.OJTCertificationEnd
	}
	return nil, nil
}

// Trainee is a roster entry: an enrolled user plus that day's attendance
// marker. Status is nil when no mark exists for the requested date.
type Trainee struct {
	ID         uuid.UUID         `json:"id"`
	BatchID    uuid.UUID         `json:"batch_id"`
	FullName   string            `json:"full_name"`
	EmployeeID string            `json:"employee_id"`
	Email      string            `json:"email"`
	Status     *AttendanceStatus `json:"status,omitempty"`
	EnrolledAt time.Time         `json:"enrolled_at"`
}
