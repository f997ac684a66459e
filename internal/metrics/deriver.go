// Package metrics derives the batch progress and attendance view-model from
// already-fetched records. Derive is pure: no I/O, no clock reads, no errors.
package metrics

import (
	"math"
	"strings"
	"time"

	"github.com/qualitrack/backend/internal/models"
)

// Inputs are the four externally supplied records Derive consumes.
type Inputs struct {
	Batch *models.Batch
	// Roster is the enrolled trainees with today's attendance marker.
	Roster []models.Trainee
	// Historical, when present, overrides the roster-derived tally for the
	// overview counts.
	Historical *models.AttendanceAggregate
	// Daily is the per-day aggregate history for the batch.
	Daily []models.DailyAttendance
}

// Tally is a four-bucket attendance count.
type Tally struct {
	Present int
	Absent  int
	Late    int
	Leave   int
}

// Total returns the summed population of the tally.
func (t Tally) Total() int { return t.Present + t.Absent + t.Late + t.Leave }

// Rate computes an attendance percentage from counts. Late counts as half
// attendance. Returns 0 when total is 0.
func Rate(present, late, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round((float64(present) + 0.5*float64(late)) / float64(total) * 100))
}

// Derive computes BatchMetrics for one batch as of now. The zero value is
// returned for a nil batch.
func Derive(in Inputs, now time.Time) *models.BatchMetrics {
	out := &models.BatchMetrics{
		AttendanceOverview: models.AttendanceOverview{
			DailyAttendance: in.Daily,
		},
	}
	if in.Batch == nil {
		return out
	}
	b := in.Batch
	today := dateOf(now)

	// Overall progress over the batch window, inclusive of both endpoints.
	totalDays := daysInclusive(dateOf(b.StartDate), dateOf(b.EndDate))
	daysCompleted := 0
	if !today.Before(dateOf(b.StartDate)) {
		daysCompleted = clamp(daysInclusive(dateOf(b.StartDate), today), 0, totalDays)
	}
	out.TotalDays = totalDays
	out.DaysCompleted = daysCompleted
	out.DaysRemaining = totalDays - daysCompleted
	out.OverallProgress = progressPercent(daysCompleted, totalDays)

	// Phase timeline: only phases with both dates present appear.
	for _, name := range models.PhaseNames {
		start, end := b.PhaseWindow(name)
		if start == nil || end == nil {
			continue
		}
		out.Phases = append(out.Phases, derivePhase(name, dateOf(*start), dateOf(*end), today))
	}

	// Current phase progress: match batch status against the timeline by
	// normalized name. Statuses without a phase entry (planned, completed)
	// leave it at 0.
	out.CurrentPhase = string(b.Status)
	for _, p := range out.Phases {
		if normalizePhaseName(p.Name) == normalizePhaseName(string(b.Status)) {
			out.CurrentPhaseProgress = p.Progress
			break
		}
	}

	todayTally := tallyRoster(in.Roster)

	// Overview counts: historical aggregate wins over the roster tally.
	overview := todayTally
	if in.Historical != nil {
		overview = Tally{
			Present: in.Historical.PresentCount,
			Absent:  in.Historical.AbsentCount,
			Late:    in.Historical.LateCount,
			Leave:   in.Historical.LeaveCount,
		}
	}
	out.AttendanceOverview.PresentCount = overview.Present
	out.AttendanceOverview.AbsentCount = overview.Absent
	out.AttendanceOverview.LateCount = overview.Late
	out.AttendanceOverview.LeaveCount = overview.Leave
	out.AttendanceOverview.AttendanceRate = Rate(overview.Present, overview.Late, overview.Total())

	out.AttendanceOverview.PhaseAttendance = derivePhaseAttendance(b, in.Daily, today)
	if len(out.AttendanceOverview.PhaseAttendance) == 0 {
		// No daily record landed in any phase window: synthesize a single
		// entry for the current phase from today's tally so the breakdown
		// always carries at least one row.
		out.AttendanceOverview.PhaseAttendance = []models.PhaseAttendance{{
			Phase:          string(b.Status),
			PresentCount:   todayTally.Present,
			AbsentCount:    todayTally.Absent,
			LateCount:      todayTally.Late,
			LeaveCount:     todayTally.Leave,
			AttendanceRate: Rate(todayTally.Present, todayTally.Late, todayTally.Total()),
			TotalDays:      1,
			TotalRecords:   todayTally.Total(),
		}}
	}

	out.AttendanceOverview.TraineeAttendance = deriveTraineeAttendance(in.Roster)
	return out
}

// derivePhase computes one timeline entry. Status is a three-state function
// of today against [start, end].
func derivePhase(name string, start, end, today time.Time) models.Phase {
	p := models.Phase{
		Name:      name,
		StartDate: start,
		EndDate:   end,
		TotalDays: daysInclusive(start, end),
	}
	switch {
	case today.Before(start):
		p.Status = models.PhaseUpcoming
	case today.After(end):
		p.Status = models.PhaseCompleted
		p.DaysCompleted = p.TotalDays
		p.Progress = 100
	default:
		p.Status = models.PhaseActive
		p.DaysCompleted = clamp(daysInclusive(start, today), 0, p.TotalDays)
		p.Progress = progressPercent(p.DaysCompleted, p.TotalDays)
	}
	return p
}

// tallyRoster classifies each trainee's marker into the four buckets.
// Nil or unrecognized markers count as absent. A roster with no markers at
// all (no data for the day) puts everyone in the absent bucket, which keeps
// "no data" distinguishable from "all present" downstream.
func tallyRoster(roster []models.Trainee) Tally {
	var t Tally
	marked := false
	for _, tr := range roster {
		if tr.Status == nil {
			t.Absent++
			continue
		}
		marked = true
		switch *tr.Status {
		case models.AttendancePresent:
			t.Present++
		case models.AttendanceLate:
			t.Late++
		case models.AttendanceLeave:
			t.Leave++
		default:
			t.Absent++
		}
	}
	if !marked {
		return Tally{Absent: len(roster)}
	}
	return t
}

// derivePhaseAttendance buckets daily history into phase windows. A window
// runs from the phase start to its own end, else to the day before the next
// planned phase starts, else to today. Days falling between a phase's end
// and the next phase's start belong to no bucket.
func derivePhaseAttendance(b *models.Batch, daily []models.DailyAttendance, today time.Time) []models.PhaseAttendance {
	var out []models.PhaseAttendance
	for i, name := range models.PhaseNames {
		start, end := b.PhaseWindow(name)
		if start == nil {
			continue
		}
		lo := dateOf(*start)
		hi := today
		if end != nil {
			hi = dateOf(*end)
		} else if next := nextPhaseStart(b, i); next != nil {
			hi = dateOf(*next).AddDate(0, 0, -1)
		}

		var t Tally
		days := 0
		for _, d := range daily {
			day := dateOf(d.Date)
			if day.Before(lo) || day.After(hi) {
				continue
			}
			t.Present += d.PresentCount
			t.Absent += d.AbsentCount
			t.Late += d.LateCount
			t.Leave += d.LeaveCount
			days++
		}
		if days == 0 {
			continue
		}
		out = append(out, models.PhaseAttendance{
			Phase:          name,
			PresentCount:   t.Present,
			AbsentCount:    t.Absent,
			LateCount:      t.Late,
			LeaveCount:     t.Leave,
			AttendanceRate: Rate(t.Present, t.Late, t.Total()),
			TotalDays:      days,
			TotalRecords:   t.Total(),
		})
	}
	return out
}

// deriveTraineeAttendance builds the per-trainee breakdown from today's
// marker only. A lifetime per-trainee roll-up needs per-trainee daily
// records, which are not part of the inputs.
func deriveTraineeAttendance(roster []models.Trainee) []models.TraineeAttendance {
	out := make([]models.TraineeAttendance, 0, len(roster))
	for _, tr := range roster {
		ta := models.TraineeAttendance{
			TraineeID:   tr.ID.String(),
			TraineeName: tr.FullName,
			Scope:       "today",
		}
		status := models.AttendanceAbsent
		if tr.Status != nil {
			status = *tr.Status
		}
		switch status {
		case models.AttendancePresent:
			ta.PresentCount = 1
		case models.AttendanceLate:
			ta.LateCount = 1
		case models.AttendanceLeave:
			ta.LeaveCount = 1
		default:
			ta.AbsentCount = 1
		}
		ta.AttendanceRate = Rate(ta.PresentCount, ta.LateCount, 1)
		out = append(out, ta)
	}
	return out
}

func nextPhaseStart(b *models.Batch, after int) *time.Time {
	for i := after + 1; i < len(models.PhaseNames); i++ {
		if start, _ := b.PhaseWindow(models.PhaseNames[i]); start != nil {
			return start
		}
	}
	return nil
}

// progressPercent is round(done/total*100), clamped to [0,100].
func progressPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return clamp(int(math.Round(float64(done)/float64(total)*100)), 0, 100)
}

// daysInclusive counts calendar days from a through b, both included.
// Returns 0 when b precedes a.
func daysInclusive(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours()/24) + 1
}

// dateOf strips the time-of-day component.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizePhaseName lowercases and strips spaces, hyphens and underscores so
// "OJT Certification" matches "ojt_certification".
func normalizePhaseName(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, s)
}
