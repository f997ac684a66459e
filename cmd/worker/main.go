// Package main runs the background job worker (attendance rollups, report generation).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/qualitrack/backend/config"
	"github.com/qualitrack/backend/internal/attendance"
	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/certifications"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/internal/realtime"
	"github.com/qualitrack/backend/internal/reports"
	"github.com/qualitrack/backend/internal/worker"
	"github.com/qualitrack/backend/pkg/database"
	"github.com/qualitrack/backend/pkg/queue"
	"github.com/qualitrack/backend/pkg/redis"
	"github.com/qualitrack/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		UploadsBucket:        cfg.AWS.UploadsBucket,
		ReportsBucket:        cfg.AWS.ReportsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	attRepo := attendance.NewRepository(pool)
	batchRepo := batches.NewRepository(pool)
	orgRepo := organizations.NewRepository(pool)
	certRepo := certifications.NewRepository(pool)
	reportRepo := reports.NewRepository(pool)
	builder := reports.NewBuilder(batchRepo, attRepo, certRepo)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	publisher := realtime.NewRedisPubSub(rdb.Client, logger)

	processor := worker.NewProcessor(attRepo, batchRepo, orgRepo, reportRepo, builder,
		s3Client, jobQueue, publisher, logger)
	scanner := worker.NewScanner(batchRepo, jobQueue,
		time.Duration(cfg.Worker.RollupScanMinutes)*time.Minute, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	go scanner.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
