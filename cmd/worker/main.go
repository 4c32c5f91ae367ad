package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/syair2222/merahputih-ledger/internal/app"
	"github.com/syair2222/merahputih-ledger/internal/ledger"
	"github.com/syair2222/merahputih-ledger/internal/ledger/reports"
	"github.com/syair2222/merahputih-ledger/internal/platform/db"
	"github.com/syair2222/merahputih-ledger/internal/points"
	"github.com/syair2222/merahputih-ledger/internal/shared"
	"github.com/syair2222/merahputih-ledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	auditLogger := shared.NewAuditLogger(pool)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, auditLogger)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(ledgerRepo, reportCache, logger)
	ledgerService.WithSnapshotInvalidator(reportCache)

	pointsRepo := points.NewRepository(pool)
	pointsService := points.NewService(pointsRepo, ledgerService, auditLogger, points.ServiceConfig{
		ExpenseAccountID: cfg.PointExpenseAccount,
		PayableAccountID: cfg.PointPayableAccount,
		Concurrency:      cfg.WorkerConcurrency,
	}, logger)

	distributionJob := points.NewDistributionJob(pointsService, logger)
	integrityJob := jobs.NewIntegrityJob(reportService, logger)

	integrityTask, err := jobs.NewIntegrityCheckTask()
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypePointSalary, Handler: distributionJob.Handle},
			{Type: jobs.TaskTypeIntegrityCheck, Handler: integrityJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
