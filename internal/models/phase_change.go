package models

import (
	"time"

	"github.com/google/uuid"
)

// PhaseChangeStatus is the approval state of a phase-change request.
type PhaseChangeStatus string

const (
	PhaseChangePending  PhaseChangeStatus = "pending"
	PhaseChangeApproved PhaseChangeStatus = "approved"
	PhaseChangeRejected PhaseChangeStatus = "rejected"
)

// PhaseChangeRequest asks to move a batch from one status to another.
// Trainers raise them; managers (or admins) review. Approval applies the
// transition to the batch in the same transaction.
type PhaseChangeRequest struct {
	ID            uuid.UUID         `json:"id"`
	BatchID       uuid.UUID         `json:"batch_id"`
	FromStatus    BatchStatus       `json:"from_status"`
	ToStatus      BatchStatus       `json:"to_status"`
	Status        PhaseChangeStatus `json:"status"`
	Comments      string            `json:"comments,omitempty"`
	RequestedByID uuid.UUID         `json:"requested_by_id"`
	ReviewedByID  *uuid.UUID        `json:"reviewed_by_id,omitempty"`
	ReviewedAt    *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// batchStatusOrder gives each status a position in the lifecycle so that
// transition requests can be sanity-checked.
var batchStatusOrder = map[BatchStatus]int{
	BatchPlanned:          0,
	BatchInduction:        1,
	BatchTraining:         2,
	BatchCertification:    3,
	BatchOJT:              4,
	BatchOJTCertification: 5,
	BatchCompleted:        6,
}

// ValidPhaseTransition reports whether moving from one status to the next is
// a forward step in the lifecycle. Skipping phases is allowed (a batch may
// not plan every phase); moving backwards is not.
func ValidPhaseTransition(from, to BatchStatus) bool {
	fo, ok1 := batchStatusOrder[from]
	to2, ok2 := batchStatusOrder[to]
	if !ok1 || !ok2 {
		return false
	}
	return to2 > fo
}
