package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/attendance"
	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/metrics"
	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/internal/realtime"
	"github.com/qualitrack/backend/internal/reports"
	"github.com/qualitrack/backend/pkg/queue"
	"github.com/qualitrack/backend/pkg/storage"
)

// Processor consumes background jobs: attendance rollups and report
// generation.
type Processor struct {
	attRepo    *attendance.Repository
	batchRepo  *batches.Repository
	orgRepo    *organizations.Repository
	reportRepo *reports.Repository
	builder    *reports.Builder
	s3         *storage.S3
	queue      *queue.Queue
	publisher  realtime.RedisPublisher
	logger     *zap.Logger
}

// NewProcessor creates a job processor. publisher may be nil, in which case
// report-ready events are not pushed.
func NewProcessor(attRepo *attendance.Repository, batchRepo *batches.Repository,
	orgRepo *organizations.Repository, reportRepo *reports.Repository, builder *reports.Builder,
	s3 *storage.S3, q *queue.Queue, publisher realtime.RedisPublisher, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		attRepo:    attRepo,
		batchRepo:  batchRepo,
		orgRepo:    orgRepo,
		reportRepo: reportRepo,
		builder:    builder,
		s3:         s3,
		queue:      q,
		publisher:  publisher,
		logger:     logger,
	}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeAttendanceRollup:
		var payload queue.AttendanceRollupPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		return p.rollup(ctx, payload)
	case queue.JobTypeReportGenerate:
		var payload queue.ReportGeneratePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		return p.generateReport(ctx, payload)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// rollup recomputes one batch-day daily_attendance row from the mark table.
// Unmarked roster members count as absent. Holidays and weekly off days are
// not rolled up at all.
func (p *Processor) rollup(ctx context.Context, payload queue.AttendanceRollupPayload) error {
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", payload.Date, err)
	}

	working, err := p.isWorkingDay(ctx, payload.OrganizationID, date)
	if err != nil {
		return err
	}
	if !working {
		p.logger.Info("skipping rollup on non-working day",
			zap.String("batch_id", payload.BatchID.String()), zap.String("date", payload.Date))
		return nil
	}

	roster, err := p.batchRepo.Roster(ctx, payload.BatchID, date)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	marks, err := p.attRepo.MarksForDay(ctx, payload.BatchID, date)
	if err != nil {
		return fmt.Errorf("load marks: %w", err)
	}
	byTrainee := make(map[string]models.AttendanceStatus, len(marks))
	for _, m := range marks {
		byTrainee[m.TraineeID.String()] = m.Status
	}

	d := models.DailyAttendance{Date: date, TotalTrainees: len(roster)}
	for _, t := range roster {
		status, ok := byTrainee[t.ID.String()]
		if !ok {
			status = models.AttendanceAbsent
		}
		switch status {
		case models.AttendancePresent:
			d.PresentCount++
		case models.AttendanceLate:
			d.LateCount++
		case models.AttendanceLeave:
			d.LeaveCount++
		default:
			d.AbsentCount++
		}
	}
	total := d.PresentCount + d.AbsentCount + d.LateCount + d.LeaveCount
	d.AttendanceRate = metrics.Rate(d.PresentCount, d.LateCount, total)

	if err := p.attRepo.UpsertDaily(ctx, payload.OrganizationID, payload.BatchID, &d); err != nil {
		return fmt.Errorf("write daily attendance: %w", err)
	}
	p.logger.Info("attendance rollup written",
		zap.String("batch_id", payload.BatchID.String()),
		zap.String("date", payload.Date),
		zap.Int("rate", d.AttendanceRate))
	return nil
}

func (p *Processor) isWorkingDay(ctx context.Context, orgID uuid.UUID, date time.Time) (bool, error) {
	settings, err := p.orgRepo.GetSettings(ctx, orgID)
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	weekday := date.Weekday().String()
	for _, off := range settings.WeeklyOffDays {
		if strings.EqualFold(off, weekday) {
			return false, nil
		}
	}
	holidayDates, err := p.orgRepo.HolidayDates(ctx, orgID, date.Year())
	if err != nil {
		return false, fmt.Errorf("load holidays: %w", err)
	}
	if _, holiday := holidayDates[date.Format("2006-01-02")]; holiday {
		return false, nil
	}
	return true, nil
}

// generateReport builds the batch insight PDF, stores it in S3 and records
// the archive entry.
func (p *Processor) generateReport(ctx context.Context, payload queue.ReportGeneratePayload) error {
	pdfBytes, err := p.builder.Build(ctx, payload.BatchID)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	key := storage.ReportKey(payload.BatchID.String(), payload.ReportID.String())
	if _, err := p.s3.Upload(ctx, p.s3.ReportsBucket(), key, "application/pdf",
		bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
		return fmt.Errorf("upload report: %w", err)
	}

	report := &models.BatchReport{
		ID:          payload.ReportID,
		BatchID:     payload.BatchID,
		S3Key:       key,
		SizeBytes:   int64(len(pdfBytes)),
		RequestedBy: payload.RequestedByID,
	}
	if err := p.reportRepo.Create(ctx, report); err != nil {
		return fmt.Errorf("record report: %w", err)
	}

	if p.publisher != nil {
		body, _ := json.Marshal(map[string]any{
			"report_id": payload.ReportID,
			"batch_id":  payload.BatchID,
			"s3_key":    key,
		})
		if err := p.publisher.PublishBatchEvent(payload.BatchID, realtime.EventReportReady, body); err != nil {
			p.logger.Warn("publish report ready", zap.Error(err))
		}
	}

	p.logger.Info("report generated",
		zap.String("batch_id", payload.BatchID.String()),
		zap.String("report_id", payload.ReportID.String()),
		zap.Int("size_bytes", len(pdfBytes)))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
