package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus is a trainee's marker for one day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceLeave   AttendanceStatus = "leave"
)

// ValidAttendanceStatus reports whether s is a known attendance status.
func ValidAttendanceStatus(s string) bool {
	switch AttendanceStatus(s) {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceLeave:
		return true
	}
	return false
}

// AttendanceMark is one trainee's persisted mark for one day. At most one row
// exists per (trainee, batch, date); re-marking upserts.
type AttendanceMark struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	BatchID        uuid.UUID        `json:"batch_id"`
	TraineeID      uuid.UUID        `json:"trainee_id"`
	Date           time.Time        `json:"date"`
	Status         AttendanceStatus `json:"status"`
	Phase          string           `json:"phase"`
	MarkedByID     uuid.UUID        `json:"marked_by_id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// DailyAttendance is one day's aggregate counts for a batch, written by the
// rollup worker.
type DailyAttendance struct {
	Date           time.Time `json:"date"`
	PresentCount   int       `json:"present_count"`
	AbsentCount    int       `json:"absent_count"`
	LateCount      int       `json:"late_count"`
	LeaveCount     int       `json:"leave_count"`
	TotalTrainees  int       `json:"total_trainees"`
	AttendanceRate int       `json:"attendance_rate"`
}

// AttendanceAggregate holds batch-lifetime counts (the historical overview).
type AttendanceAggregate struct {
	BatchID        uuid.UUID `json:"batch_id"`
	PresentCount   int       `json:"present_count"`
	AbsentCount    int       `json:"absent_count"`
	LateCount      int       `json:"late_count"`
	LeaveCount     int       `json:"leave_count"`
	TotalRecords   int       `json:"total_records"`
	AttendanceRate int       `json:"attendance_rate"`
}
