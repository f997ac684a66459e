package metrics

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/qualitrack/backend/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func statusPtr(s models.AttendanceStatus) *models.AttendanceStatus { return &s }

func trainee(name string, status *models.AttendanceStatus) models.Trainee {
	return models.Trainee{ID: uuid.New(), FullName: name, Status: status}
}

func TestRate(t *testing.T) {
	tests := []struct {
		name                 string
		present, late, total int
		want                 int
	}{
		{"zero total", 0, 0, 0, 0},
		{"negative total", 1, 0, -1, 0},
		{"all present", 10, 0, 10, 100},
		{"late counts half", 0, 10, 10, 50},
		{"mixed rounds", 7, 1, 10, 75},
		{"rounds up", 2, 1, 3, 83},
		{"half rounds away from zero", 2, 1, 4, 63},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rate(tt.present, tt.late, tt.total); got != tt.want {
				t.Errorf("Rate(%d,%d,%d) = %d, want %d", tt.present, tt.late, tt.total, got, tt.want)
			}
		})
	}
}

func TestDeriveOverallProgress(t *testing.T) {
	b := &models.Batch{
		Status:    models.BatchTraining,
		StartDate: day("2024-01-01"),
		EndDate:   day("2024-01-10"),
	}
	m := Derive(Inputs{Batch: b}, day("2024-01-05"))

	if m.TotalDays != 10 {
		t.Errorf("TotalDays = %d, want 10", m.TotalDays)
	}
	if m.DaysCompleted != 5 {
		t.Errorf("DaysCompleted = %d, want 5", m.DaysCompleted)
	}
	if m.DaysRemaining != 5 {
		t.Errorf("DaysRemaining = %d, want 5", m.DaysRemaining)
	}
	if m.OverallProgress != 50 {
		t.Errorf("OverallProgress = %d, want 50", m.OverallProgress)
	}
}

func TestDeriveProgressClamped(t *testing.T) {
	b := &models.Batch{
		Status:    models.BatchCompleted,
		StartDate: day("2024-01-01"),
		EndDate:   day("2024-01-10"),
	}

	after := Derive(Inputs{Batch: b}, day("2024-03-01"))
	if after.OverallProgress != 100 {
		t.Errorf("past end: OverallProgress = %d, want 100", after.OverallProgress)
	}
	if after.DaysRemaining != 0 {
		t.Errorf("past end: DaysRemaining = %d, want 0", after.DaysRemaining)
	}

	before := Derive(Inputs{Batch: b}, day("2023-12-01"))
	if before.OverallProgress != 0 {
		t.Errorf("before start: OverallProgress = %d, want 0", before.OverallProgress)
	}
	if before.DaysCompleted != 0 {
		t.Errorf("before start: DaysCompleted = %d, want 0", before.DaysCompleted)
	}
}

func TestDeriveNilBatch(t *testing.T) {
	m := Derive(Inputs{}, day("2024-01-01"))
	if m == nil {
		t.Fatal("Derive returned nil")
	}
	if m.OverallProgress != 0 || m.TotalDays != 0 || len(m.Phases) != 0 {
		t.Errorf("zero value expected for nil batch, got %+v", m)
	}
}

func TestDerivePhaseTimeline(t *testing.T) {
	b := &models.Batch{
		Status:             models.BatchTraining,
		StartDate:          day("2024-01-01"),
		EndDate:            day("2024-02-29"),
		InductionStart:     dayPtr("2024-01-01"),
		InductionEnd:       dayPtr("2024-01-05"),
		TrainingStart:      dayPtr("2024-01-08"),
		TrainingEnd:        dayPtr("2024-01-26"),
		CertificationStart: dayPtr("2024-01-29"),
		CertificationEnd:   dayPtr("2024-01-31"),
		// ojt dates absent: phase not planned
	}
	m := Derive(Inputs{Batch: b}, day("2024-01-10"))

	if len(m.Phases) != 3 {
		t.Fatalf("len(Phases) = %d, want 3", len(m.Phases))
	}

	induction := m.Phases[0]
	if induction.Status != models.PhaseCompleted {
		t.Errorf("induction status = %s, want completed", induction.Status)
	}
	if induction.Progress != 100 || induction.DaysCompleted != induction.TotalDays {
		t.Errorf("completed phase must be 100%%: %+v", induction)
	}

	training := m.Phases[1]
	if training.Status != models.PhaseActive {
		t.Errorf("training status = %s, want active", training.Status)
	}
	if training.TotalDays != 19 {
		t.Errorf("training TotalDays = %d, want 19", training.TotalDays)
	}
	if training.DaysCompleted != 3 {
		t.Errorf("training DaysCompleted = %d, want 3", training.DaysCompleted)
	}

	cert := m.Phases[2]
	if cert.Status != models.PhaseUpcoming {
		t.Errorf("certification status = %s, want upcoming", cert.Status)
	}
	if cert.Progress != 0 || cert.DaysCompleted != 0 {
		t.Errorf("upcoming phase must be untouched: %+v", cert)
	}

	if m.CurrentPhase != "training" {
		t.Errorf("CurrentPhase = %q, want training", m.CurrentPhase)
	}
	if m.CurrentPhaseProgress != training.Progress {
		t.Errorf("CurrentPhaseProgress = %d, want %d", m.CurrentPhaseProgress, training.Progress)
	}
}

func TestDeriveRosterTally(t *testing.T) {
	roster := []models.Trainee{
		trainee("a", statusPtr(models.AttendancePresent)),
		trainee("b", statusPtr(models.AttendancePresent)),
		trainee("c", statusPtr(models.AttendanceLate)),
		trainee("d", statusPtr(models.AttendanceLeave)),
		trainee("e", nil),
	}
	b := &models.Batch{Status: models.BatchTraining, StartDate: day("2024-01-01"), EndDate: day("2024-01-31")}
	m := Derive(Inputs{Batch: b, Roster: roster}, day("2024-01-10"))

	ov := m.AttendanceOverview
	if ov.PresentCount != 2 || ov.LateCount != 1 || ov.LeaveCount != 1 || ov.AbsentCount != 1 {
		t.Errorf("tally = %d/%d/%d/%d, want 2 present 1 late 1 leave 1 absent",
			ov.PresentCount, ov.LateCount, ov.LeaveCount, ov.AbsentCount)
	}
	if want := Rate(2, 1, 5); ov.AttendanceRate != want {
		t.Errorf("AttendanceRate = %d, want %d", ov.AttendanceRate, want)
	}
}

func TestDeriveUnmarkedRosterAllAbsent(t *testing.T) {
	roster := []models.Trainee{trainee("a", nil), trainee("b", nil), trainee("c", nil)}
	b := &models.Batch{Status: models.BatchInduction, StartDate: day("2024-01-01"), EndDate: day("2024-01-31")}
	m := Derive(Inputs{Batch: b, Roster: roster}, day("2024-01-02"))

	ov := m.AttendanceOverview
	if ov.AbsentCount != 3 || ov.PresentCount != 0 {
		t.Errorf("unmarked roster: absent = %d present = %d, want 3 and 0", ov.AbsentCount, ov.PresentCount)
	}
	if ov.AttendanceRate != 0 {
		t.Errorf("unmarked roster rate = %d, want 0", ov.AttendanceRate)
	}
}

func TestDeriveHistoricalOverridesRoster(t *testing.T) {
	roster := []models.Trainee{trainee("a", statusPtr(models.AttendancePresent))}
	hist := &models.AttendanceAggregate{
		PresentCount: 40, AbsentCount: 5, LateCount: 4, LeaveCount: 1, TotalRecords: 50,
	}
	b := &models.Batch{Status: models.BatchTraining, StartDate: day("2024-01-01"), EndDate: day("2024-01-31")}
	m := Derive(Inputs{Batch: b, Roster: roster, Historical: hist}, day("2024-01-20"))

	ov := m.AttendanceOverview
	if ov.PresentCount != 40 || ov.AbsentCount != 5 || ov.LateCount != 4 || ov.LeaveCount != 1 {
		t.Errorf("historical counts not applied: %+v", ov)
	}
	if want := Rate(40, 4, 50); ov.AttendanceRate != want {
		t.Errorf("rate = %d, want %d recomputed from historical counts", ov.AttendanceRate, want)
	}
}

func TestDerivePhaseAttendanceWindows(t *testing.T) {
	b := &models.Batch{
		Status:         models.BatchTraining,
		StartDate:      day("2024-01-01"),
		EndDate:        day("2024-01-31"),
		InductionStart: dayPtr("2024-01-01"),
		InductionEnd:   dayPtr("2024-01-03"),
		TrainingStart:  dayPtr("2024-01-08"),
		// training end missing: window extends to the eve of the next
		// planned phase, or today when there is none.
	}
	daily := []models.DailyAttendance{
		{Date: day("2024-01-02"), PresentCount: 8, AbsentCount: 2},
		{Date: day("2024-01-05"), PresentCount: 9, AbsentCount: 1}, // gap day, no bucket
		{Date: day("2024-01-09"), PresentCount: 7, AbsentCount: 3},
		{Date: day("2024-01-10"), PresentCount: 6, AbsentCount: 4},
	}
	m := Derive(Inputs{Batch: b, Daily: daily}, day("2024-01-10"))

	// The timeline needs both dates; the half-planned training phase is
	// omitted there even though its attendance window is usable.
	if len(m.Phases) != 1 || m.Phases[0].Name != "induction" {
		t.Errorf("Phases = %+v, want induction only", m.Phases)
	}

	pa := m.AttendanceOverview.PhaseAttendance
	if len(pa) != 2 {
		t.Fatalf("len(PhaseAttendance) = %d, want 2", len(pa))
	}
	if pa[0].Phase != "induction" || pa[0].PresentCount != 8 || pa[0].TotalDays != 1 {
		t.Errorf("induction bucket wrong: %+v", pa[0])
	}
	if pa[1].Phase != "training" || pa[1].PresentCount != 13 || pa[1].TotalDays != 2 {
		t.Errorf("training bucket wrong: %+v", pa[1])
	}
}

func TestDerivePhaseAttendanceFallback(t *testing.T) {
	roster := []models.Trainee{
		trainee("a", statusPtr(models.AttendancePresent)),
		trainee("b", statusPtr(models.AttendanceAbsent)),
	}
	b := &models.Batch{Status: models.BatchInduction, StartDate: day("2024-01-01"), EndDate: day("2024-01-31")}
	m := Derive(Inputs{Batch: b, Roster: roster}, day("2024-01-02"))

	pa := m.AttendanceOverview.PhaseAttendance
	if len(pa) != 1 {
		t.Fatalf("len(PhaseAttendance) = %d, want synthesized single entry", len(pa))
	}
	if pa[0].Phase != "induction" || pa[0].PresentCount != 1 || pa[0].TotalRecords != 2 {
		t.Errorf("fallback bucket wrong: %+v", pa[0])
	}
}

func TestDerivePhaseAttendanceFallbackEmptyRoster(t *testing.T) {
	b := &models.Batch{Status: models.BatchPlanned, StartDate: day("2024-01-01"), EndDate: day("2024-01-31")}
	m := Derive(Inputs{Batch: b}, day("2024-01-02"))

	pa := m.AttendanceOverview.PhaseAttendance
	if len(pa) != 1 {
		t.Fatalf("len(PhaseAttendance) = %d, want the synthesized entry even without trainees", len(pa))
	}
	if pa[0].Phase != "planned" || pa[0].TotalRecords != 0 || pa[0].AttendanceRate != 0 {
		t.Errorf("empty-roster bucket wrong: %+v", pa[0])
	}
}

func TestDeriveTraineeAttendanceScopedToToday(t *testing.T) {
	roster := []models.Trainee{
		trainee("present one", statusPtr(models.AttendancePresent)),
		trainee("late one", statusPtr(models.AttendanceLate)),
		trainee("unmarked one", nil),
	}
	b := &models.Batch{Status: models.BatchTraining, StartDate: day("2024-01-01"), EndDate: day("2024-01-31")}
	m := Derive(Inputs{Batch: b, Roster: roster}, day("2024-01-10"))

	ta := m.AttendanceOverview.TraineeAttendance
	if len(ta) != 3 {
		t.Fatalf("len(TraineeAttendance) = %d, want 3", len(ta))
	}
	for _, e := range ta {
		if e.Scope != "today" {
			t.Errorf("trainee %s scope = %q, want today", e.TraineeName, e.Scope)
		}
		if got := e.PresentCount + e.AbsentCount + e.LateCount + e.LeaveCount; got != 1 {
			t.Errorf("trainee %s counts sum = %d, want exactly 1", e.TraineeName, got)
		}
	}
	if ta[0].AttendanceRate != 100 {
		t.Errorf("present trainee rate = %d, want 100", ta[0].AttendanceRate)
	}
	if ta[1].AttendanceRate != 50 {
		t.Errorf("late trainee rate = %d, want 50", ta[1].AttendanceRate)
	}
	if ta[2].AttendanceRate != 0 {
		t.Errorf("unmarked trainee rate = %d, want 0", ta[2].AttendanceRate)
	}
}

func TestDaysInclusive(t *testing.T) {
	if got := daysInclusive(day("2024-01-01"), day("2024-01-01")); got != 1 {
		t.Errorf("same day = %d, want 1", got)
	}
	if got := daysInclusive(day("2024-01-01"), day("2024-01-10")); got != 10 {
		t.Errorf("ten days = %d, want 10", got)
	}
	if got := daysInclusive(day("2024-01-10"), day("2024-01-01")); got != 0 {
		t.Errorf("reversed = %d, want 0", got)
	}
}

func TestNormalizePhaseName(t *testing.T) {
	if normalizePhaseName("OJT Certification") != normalizePhaseName("ojt_certification") {
		t.Error("OJT Certification should match ojt_certification")
	}
	if normalizePhaseName("On-Job-Training") != "onjobtraining" {
		t.Errorf("normalize = %q", normalizePhaseName("On-Job-Training"))
	}
}
