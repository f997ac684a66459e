// Package main runs the training admin HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/qualitrack/backend/config"
	"github.com/qualitrack/backend/internal/attendance"
	"github.com/qualitrack/backend/internal/auth"
	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/certifications"
	"github.com/qualitrack/backend/internal/holidays"
	"github.com/qualitrack/backend/internal/lob"
	"github.com/qualitrack/backend/internal/metrics"
	"github.com/qualitrack/backend/internal/middleware"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/internal/phasechange"
	"github.com/qualitrack/backend/internal/realtime"
	"github.com/qualitrack/backend/internal/reports"
	"github.com/qualitrack/backend/internal/users"
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

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			UploadsBucket:        cfg.AWS.UploadsBucket,
			ReportsBucket:        cfg.AWS.ReportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	metricsCache := metrics.NewCache(time.Duration(cfg.Metrics.CacheTTLSeconds) * time.Second)
	invalidator := metrics.NewBroadcaster(metricsCache, rdb.Client, logger)
	invalCtx, invalCancel := context.WithCancel(context.Background())
	defer invalCancel()
	go invalidator.Listen(invalCtx)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Organizations and settings
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo)
	orgAccess := organizations.RequireOrgAccess(orgRepo)

	// Lines of business and processes
	lobRepo := lob.NewRepository(pool)
	lobHandler := lob.NewHandler(lobRepo, logger)

	// Users, reporting tree, bulk upload
	userRepo := users.NewRepository(pool)
	userHandler := users.NewHandler(userRepo, lobRepo, s3Client, logger)

	// Holidays
	holidayRepo := holidays.NewRepository(pool)
	holidayHandler := holidays.NewHandler(holidayRepo, logger)

	// Batches and rosters
	batchRepo := batches.NewRepository(pool)
	batchHandler := batches.NewHandler(batchRepo, logger)
	batchAccess := batches.RequireBatchAccess(batchRepo, orgRepo)

	// Attendance
	attRepo := attendance.NewRepository(pool)
	attHandler := attendance.NewHandler(attRepo, batchRepo, orgRepo, invalidator, jobQueue, hub, logger)

	// Derived batch metrics
	metricsHandler := metrics.NewHandler(batchRepo, attRepo, metricsCache, logger)

	// Phase change workflow
	pcrRepo := phasechange.NewRepository(pool)
	pcrHandler := phasechange.NewHandler(pcrRepo, batchRepo, orgRepo, invalidator, hub, logger)

	// Certification evaluations and refreshers
	certRepo := certifications.NewRepository(pool)
	certHandler := certifications.NewHandler(certRepo, batchRepo, logger)

	// Reports
	reportRepo := reports.NewRepository(pool)
	reportBuilder := reports.NewBuilder(batchRepo, attRepo, certRepo)
	reportHandler := reports.NewHandler(reportRepo, reportBuilder, jobQueue, s3Client, logger)

	jwtValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	registerRoutes(router, apiHandlers{
		auth:        authHandler,
		orgs:        orgHandler,
		users:       userHandler,
		lob:         lobHandler,
		holidays:    holidayHandler,
		batches:     batchHandler,
		attendance:  attHandler,
		metrics:     metricsHandler,
		phaseChange: pcrHandler,
		certs:       certHandler,
		reports:     reportHandler,
		jwtAuth:     middleware.JWT(jwtService),
		orgAccess:   orgAccess,
		batchAccess: batchAccess,
	})

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", func(c *gin.Context) {
		realtime.ServeWs(hub, logger, jwtValidate)(c)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	invalCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
