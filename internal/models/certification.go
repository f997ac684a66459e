package models

import (
	"time"

	"github.com/google/uuid"
)

// EvaluationType distinguishes certification results from audits.
type EvaluationType string

const (
	EvaluationCertification EvaluationType = "certification"
	EvaluationAudit         EvaluationType = "audit"
)

// EvaluationStatus is the outcome of an evaluation.
type EvaluationStatus string

const (
	EvaluationPending EvaluationStatus = "pending"
	EvaluationPassed  EvaluationStatus = "passed"
	EvaluationFailed  EvaluationStatus = "failed"
)

// CertificationEvaluation is one trainee's evaluation result in a batch.
type CertificationEvaluation struct {
	ID            uuid.UUID        `json:"id"`
	BatchID       uuid.UUID        `json:"batch_id"`
	TraineeID     uuid.UUID        `json:"trainee_id"`
	TraineeName   string           `json:"trainee_name,omitempty"`
	Type          EvaluationType   `json:"type"`
	Status        EvaluationStatus `json:"status"`
	Score         *float64         `json:"score,omitempty"`
	EvaluatorID   *uuid.UUID       `json:"evaluator_id,omitempty"`
	EvaluatedAt   *time.Time       `json:"evaluated_at,omitempty"`
	TemplateName  string           `json:"template_name,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Refresher schedules follow-up training for a trainee who needs it.
type Refresher struct {
	ID            uuid.UUID  `json:"id"`
	BatchID       uuid.UUID  `json:"batch_id"`
	TraineeID     uuid.UUID  `json:"trainee_id"`
	Reason        string     `json:"reason,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	ScheduledByID uuid.UUID  `json:"scheduled_by_id"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BatchReport is a generated insight PDF stored in S3.
type BatchReport struct {
	ID          uuid.UUID `json:"id"`
	BatchID     uuid.UUID `json:"batch_id"`
	S3Key       string    `json:"s3_key"`
	SizeBytes   int64     `json:"size_bytes"`
	RequestedBy uuid.UUID `json:"requested_by"`
	CreatedAt   time.Time `json:"created_at"`
}
