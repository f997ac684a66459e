package models

import "testing"

func TestValidPhaseTransition(t *testing.T) {
	tests := []struct {
		name string
		from BatchStatus
		to   BatchStatus
		want bool
	}{
		{"adjacent forward", BatchPlanned, BatchInduction, true},
		{"skip phases", BatchInduction, BatchOJT, true},
		{"straight to completed", BatchPlanned, BatchCompleted, true},
		{"backwards", BatchTraining, BatchInduction, false},
		{"same status", BatchTraining, BatchTraining, false},
		{"out of completed", BatchCompleted, BatchOJT, false},
		{"unknown from", BatchStatus("archived"), BatchTraining, false},
		{"unknown to", BatchTraining, BatchStatus("archived"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPhaseTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("ValidPhaseTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidBatchStatus(t *testing.T) {
	for _, s := range PhaseNames {
		if !ValidBatchStatus(s) {
			t.Errorf("ValidBatchStatus(%q) = false for a phase name", s)
		}
	}
	if !ValidBatchStatus(string(BatchPlanned)) || !ValidBatchStatus(string(BatchCompleted)) {
		t.Error("terminal statuses rejected")
	}
	if ValidBatchStatus("archived") {
		t.Error("unknown status accepted")
	}
}
