package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/syair2222/merahputih-ledger/internal/ledger"
	"github.com/syair2222/merahputih-ledger/internal/ledger/reports"
)

// IntegrityJob recomputes the cumulative trial balance on a schedule so that
// an unbalanced book surfaces in logs and metrics instead of waiting for the
// next report request.
type IntegrityJob struct {
	reports *reports.Service
	logger  *slog.Logger
}

// NewIntegrityJob constructs the job handler.
func NewIntegrityJob(reportService *reports.Service, logger *slog.Logger) *IntegrityJob {
	return &IntegrityJob{reports: reportService, logger: logger}
}

// Handle runs one integrity check.
func (j *IntegrityJob) Handle(ctx context.Context, task *asynq.Task) error {
	tb, err := j.reports.TrialBalance(ctx, nil)
	if err != nil {
		if errors.Is(err, ledger.ErrIntegrity) {
			j.logger.Error("scheduled integrity check found an unbalanced book", slog.Any("error", err))
		}
		return fmt.Errorf("integrity check: %w", err)
	}
	j.logger.Info("integrity check passed",
		slog.Int("accounts", len(tb.Entries)),
		slog.Int64("total_debit", tb.TotalDebit),
		slog.Int64("total_credit", tb.TotalCredit))
	return nil
}
