package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/qualitrack/backend/internal/models"
)

// InsightData carries everything rendered into a batch insight report.
type InsightData struct {
	Batch       *models.Batch
	Metrics     *models.BatchMetrics
	Passed      int
	Evaluated   int
	GeneratedAt time.Time
}

// BuildInsightPDF renders the batch insight report and returns the PDF bytes.
func BuildInsightPDF(data InsightData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Batch Insight Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Batch Insight Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Batch: %s", data.Batch.Name))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", data.Batch.Status))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Window: %s to %s",
		data.Batch.StartDate.Format("2006-01-02"), data.Batch.EndDate.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Trainees: %d", data.Batch.UserCount))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", data.GeneratedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	m := data.Metrics

	sectionHeader(pdf, "Progress")
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Overall progress: %d%%", m.OverallProgress))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Current phase: %s (%d%%)", orDash(m.CurrentPhase), m.CurrentPhaseProgress))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Days: %d completed, %d remaining of %d",
		m.DaysCompleted, m.DaysRemaining, m.TotalDays))
	pdf.Ln(10)

	sectionHeader(pdf, "Phase Timeline")
	phaseTable(pdf, m.Phases)
	pdf.Ln(4)

	sectionHeader(pdf, "Attendance")
	ov := m.AttendanceOverview
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Rate: %d%%  (present %d, late %d, absent %d, leave %d)",
		ov.AttendanceRate, ov.PresentCount, ov.LateCount, ov.AbsentCount, ov.LeaveCount))
	pdf.Ln(8)
	phaseAttendanceTable(pdf, ov.PhaseAttendance)
	pdf.Ln(4)

	sectionHeader(pdf, "Certification")
	pdf.SetFont("Helvetica", "", 11)
	if data.Evaluated > 0 {
		rate := data.Passed * 100 / data.Evaluated
		pdf.Cell(0, 6, fmt.Sprintf("Pass rate: %d%% (%d of %d evaluated)", rate, data.Passed, data.Evaluated))
	} else {
		pdf.Cell(0, 6, "No evaluations recorded yet")
	}
	pdf.Ln(8)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

func phaseTable(pdf *gofpdf.Fpdf, phases []models.Phase) {
	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{45, 30, 30, 28, 28, 25}
	headers := []string{"Phase", "Start", "End", "Status", "Progress", "Days"}
	for i, hd := range headers {
		pdf.CellFormat(widths[i], 7, hd, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	if len(phases) == 0 {
		pdf.CellFormat(186, 7, "No phase windows planned", "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
		return
	}
	for _, p := range phases {
		cells := []string{
			p.Name,
			p.StartDate.Format("2006-01-02"),
			p.EndDate.Format("2006-01-02"),
			string(p.Status),
			fmt.Sprintf("%d%%", p.Progress),
			fmt.Sprintf("%d/%d", p.DaysCompleted, p.TotalDays),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func phaseAttendanceTable(pdf *gofpdf.Fpdf, rows []models.PhaseAttendance) {
	if len(rows) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{45, 26, 26, 26, 26, 25}
	headers := []string{"Phase", "Present", "Late", "Absent", "Leave", "Rate"}
	for i, hd := range headers {
		pdf.CellFormat(widths[i], 7, hd, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		cells := []string{
			r.Phase,
			fmt.Sprintf("%d", r.PresentCount),
			fmt.Sprintf("%d", r.LateCount),
			fmt.Sprintf("%d", r.AbsentCount),
			fmt.Sprintf("%d", r.LeaveCount),
			fmt.Sprintf("%d%%", r.AttendanceRate),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
