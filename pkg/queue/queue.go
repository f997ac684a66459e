package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueJobs is the Redis list key for background jobs.
	QueueJobs = "worker:jobs"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	// JobTypeAttendanceRollup recomputes one batch-day daily_attendance row.
	JobTypeAttendanceRollup JobType = "attendance_rollup"
	// JobTypeReportGenerate builds a batch insight PDF and uploads it to S3.
	JobTypeReportGenerate JobType = "report_generate"
)

// AttendanceRollupPayload is the payload for rollup jobs. Date is YYYY-MM-DD.
type AttendanceRollupPayload struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	BatchID        uuid.UUID `json:"batch_id"`
	Date           string    `json:"date"`
}

// ReportGeneratePayload is the payload for report generation jobs.
type ReportGeneratePayload struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	BatchID        uuid.UUID `json:"batch_id"`
	ReportID       uuid.UUID `json:"report_id"`
	RequestedByID  uuid.UUID `json:"requested_by_id"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

func (q *Queue) enqueue(ctx context.Context, jobType JobType, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   body,
		Attempt:   0,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueueJobs, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued job", zap.String("job_id", job.ID), zap.String("type", string(jobType)))
	return nil
}

// EnqueueAttendanceRollup enqueues a daily attendance rollup job.
func (q *Queue) EnqueueAttendanceRollup(ctx context.Context, payload AttendanceRollupPayload) error {
	return q.enqueue(ctx, JobTypeAttendanceRollup, payload)
}

// EnqueueReportGenerate enqueues a batch insight report generation job.
func (q *Queue) EnqueueReportGenerate(ctx context.Context, payload ReportGeneratePayload) error {
	return q.enqueue(ctx, JobTypeReportGenerate, payload)
}

// Dequeue blocks until a job is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	result, err := q.client.BLPop(ctx, 0, QueueJobs).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	return &job, nil
}

// Retry re-enqueues a job with incremented attempt. If attempt >= MaxRetries,
// pushes to DLQ instead.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	if err := q.client.RPush(ctx, QueueJobs, raw).Err(); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}
