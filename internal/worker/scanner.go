package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/pkg/queue"
)

// Scanner periodically enqueues a rollup for every active batch so that day
// aggregates exist even when nobody marked attendance late in the day.
type Scanner struct {
	batchRepo *batches.Repository
	queue     *queue.Queue
	interval  time.Duration
	logger    *zap.Logger
}

// NewScanner creates a rollup scanner.
func NewScanner(batchRepo *batches.Repository, q *queue.Queue, interval time.Duration, logger *zap.Logger) *Scanner {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Scanner{batchRepo: batchRepo, queue: q, interval: interval, logger: logger}
}

// Run emits a scan on start and then on every tick until ctx is done.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("rollup scanner stopping")
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scanner) scan(ctx context.Context) {
	refs, err := s.batchRepo.ActiveRefs(ctx)
	if err != nil {
		s.logger.Warn("list active batches", zap.Error(err))
		return
	}
	today := time.Now().UTC().Format("2006-01-02")
	for _, ref := range refs {
		err := s.queue.EnqueueAttendanceRollup(ctx, queue.AttendanceRollupPayload{
			OrganizationID: ref.OrganizationID,
			BatchID:        ref.ID,
			Date:           today,
		})
		if err != nil {
			s.logger.Warn("enqueue scheduled rollup", zap.Error(err), zap.String("batch_id", ref.ID.String()))
		}
	}
	s.logger.Debug("rollup scan complete", zap.Int("batches", len(refs)))
}
