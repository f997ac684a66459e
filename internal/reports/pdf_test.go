package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/qualitrack/backend/internal/models"
)

func TestBuildInsightPDF(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	trainStart := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	trainEnd := time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC)

	data := InsightData{
		Batch: &models.Batch{
			ID:        uuid.New(),
			Name:      "Collections Wave 4",
			Status:    models.BatchTraining,
			StartDate: start,
			EndDate:   end,
			Location:  "Pune",
		},
		Metrics: &models.BatchMetrics{
			OverallProgress: 40,
			CurrentPhase:    "training",
			DaysCompleted:   24,
			DaysRemaining:   36,
			TotalDays:       60,
			Phases: []models.Phase{
				{Name: "training", StartDate: trainStart, EndDate: trainEnd, Status: models.PhaseActive, Progress: 60, DaysCompleted: 12, TotalDays: 19},
			},
			AttendanceOverview: models.AttendanceOverview{
				PresentCount: 40, AbsentCount: 5, LateCount: 4, LeaveCount: 1, AttendanceRate: 84,
				PhaseAttendance: []models.PhaseAttendance{
					{Phase: "training", PresentCount: 40, AbsentCount: 5, LateCount: 4, LeaveCount: 1, AttendanceRate: 84, TotalDays: 10, TotalRecords: 50},
				},
			},
		},
		Passed:      8,
		Evaluated:   10,
		GeneratedAt: time.Date(2024, 1, 20, 9, 30, 0, 0, time.UTC),
	}

	out, err := BuildInsightPDF(data)
	if err != nil {
		t.Fatalf("BuildInsightPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header: %q", out[:min(8, len(out))])
	}
	if len(out) < 1000 {
		t.Errorf("suspiciously small PDF: %d bytes", len(out))
	}
}

func TestBuildInsightPDFEmptySections(t *testing.T) {
	data := InsightData{
		Batch: &models.Batch{
			ID:        uuid.New(),
			Name:      "Fresh Batch",
			Status:    models.BatchPlanned,
			StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		},
		Metrics:     &models.BatchMetrics{},
		GeneratedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	out, err := BuildInsightPDF(data)
	if err != nil {
		t.Fatalf("BuildInsightPDF with empty sections: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}
