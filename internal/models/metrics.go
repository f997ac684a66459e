package models

import "time"

// PhaseStatus is where a phase window sits relative to the current date.
type PhaseStatus string

const (
	PhaseUpcoming  PhaseStatus = "upcoming"
	PhaseActive    PhaseStatus = "active"
	PhaseCompleted PhaseStatus = "completed"
)

// Phase is a derived timeline entry for one batch phase. Computed fresh from
// batch dates on every metrics request; never persisted.
type Phase struct {
	Name          string      `json:"name"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date"`
	Status        PhaseStatus `json:"status"`
	Progress      int         `json:"progress"` // 0–100
	DaysCompleted int         `json:"days_completed"`
	TotalDays     int         `json:"total_days"`
}

// PhaseAttendance aggregates daily counts falling inside one phase window.
type PhaseAttendance struct {
	Phase          string `json:"phase"`
	PresentCount   int    `json:"present_count"`
	AbsentCount    int    `json:"absent_count"`
	LateCount      int    `json:"late_count"`
	LeaveCount     int    `json:"leave_count"`
	AttendanceRate int    `json:"attendance_rate"`
	TotalDays      int    `json:"total_days"`
	TotalRecords   int    `json:"total_records"`
}

// TraineeAttendance is one trainee's attendance breakdown. Counts reflect the
// trainee's marker for the requested day only; see the scope field.
type TraineeAttendance struct {
	TraineeID      string `json:"trainee_id"`
	TraineeName    string `json:"trainee_name"`
	PresentCount   int    `json:"present_count"`
	AbsentCount    int    `json:"absent_count"`
	LateCount      int    `json:"late_count"`
	LeaveCount     int    `json:"leave_count"`
	AttendanceRate int    `json:"attendance_rate"`
	// Scope is always "today": a per-trainee historical roll-up is not
	// derivable from the inputs this computation receives.
	Scope string `json:"scope"`
}

// AttendanceOverview is the attendance portion of BatchMetrics.
type AttendanceOverview struct {
	PresentCount      int                 `json:"present_count"`
	AbsentCount       int                 `json:"absent_count"`
	LateCount         int                 `json:"late_count"`
	LeaveCount        int                 `json:"leave_count"`
	AttendanceRate    int                 `json:"attendance_rate"`
	DailyAttendance   []DailyAttendance   `json:"daily_attendance"`
	PhaseAttendance   []PhaseAttendance   `json:"phase_attendance"`
	TraineeAttendance []TraineeAttendance `json:"trainee_attendance"`
}

// BatchMetrics is the full derived view-model for one batch.
type BatchMetrics struct {
	OverallProgress      int                `json:"overall_progress"`
	CurrentPhase         string             `json:"current_phase"`
	CurrentPhaseProgress int                `json:"current_phase_progress"`
	Phases               []Phase            `json:"phases"`
	DaysCompleted        int                `json:"days_completed"`
	DaysRemaining        int                `json:"days_remaining"`
	TotalDays            int                `json:"total_days"`
	AttendanceOverview   AttendanceOverview `json:"attendance_overview"`
}
