package attendance

import (
	"testing"
	"time"

	"github.com/qualitrack/backend/internal/models"
)

func TestCurrentPhaseName(t *testing.T) {
	d := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}
	ptr := func(s string) *time.Time {
		v := d(s)
		return &v
	}
	b := &models.Batch{
		Status:         models.BatchTraining,
		InductionStart: ptr("2024-01-01"),
		InductionEnd:   ptr("2024-01-05"),
		TrainingStart:  ptr("2024-01-08"),
		TrainingEnd:    ptr("2024-01-26"),
		OJTStart:       ptr("2024-02-01"), // end missing, window unusable
	}

	tests := []struct {
		name string
		date string
		want string
	}{
		{"inside induction", "2024-01-03", "induction"},
		{"window boundary", "2024-01-05", "induction"},
		{"gap falls back to status", "2024-01-06", "training"},
		{"inside training", "2024-01-15", "training"},
		{"half-planned phase ignored", "2024-02-10", "training"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := currentPhaseName(b, d(tt.date)); got != tt.want {
				t.Errorf("currentPhaseName(%s) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}
