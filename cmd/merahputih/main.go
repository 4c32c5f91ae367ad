package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/syair2222/merahputih-ledger/internal/app"
	"github.com/syair2222/merahputih-ledger/internal/ledger"
	"github.com/syair2222/merahputih-ledger/internal/ledger/reports"
	"github.com/syair2222/merahputih-ledger/internal/observability"
	"github.com/syair2222/merahputih-ledger/internal/platform/db"
	"github.com/syair2222/merahputih-ledger/internal/points"
	"github.com/syair2222/merahputih-ledger/internal/shared"
	"github.com/syair2222/merahputih-ledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	if err := db.Migrate(cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	ledgerRepo := ledger.NewRepository(pool)
	registry := ledger.NewRegistry(ledgerRepo, auditLogger)
	ledgerService := ledger.NewService(ledgerRepo, auditLogger)
	ledgerService.WithObserver(metrics)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(ledgerRepo, reportCache, logger)
	reportService.WithObserver(metrics)
	ledgerService.WithSnapshotInvalidator(reportCache)

	pointsRepo := points.NewRepository(pool)
	pointsService := points.NewService(pointsRepo, ledgerService, auditLogger, points.ServiceConfig{
		ExpenseAccountID: cfg.PointExpenseAccount,
		PayableAccountID: cfg.PointPayableAccount,
		Concurrency:      cfg.WorkerConcurrency,
	}, logger)
	pointsService.WithObserver(metrics)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		Metrics:       metrics,
		LedgerHandler: ledger.NewHandler(logger, registry, ledgerService),
		ReportHandler: reports.NewHandler(logger, reportService),
		PointsHandler: points.NewHandler(logger, pointsService, jobClient),
		JobHandler:    jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppRequestTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
