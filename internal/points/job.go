package points

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/syair2222/merahputih-ledger/jobs"
)

// DistributionJob runs the monthly point salary distribution from the queue.
type DistributionJob struct {
	service *Service
	logger  *slog.Logger
}

// NewDistributionJob constructs the job handler.
func NewDistributionJob(service *Service, logger *slog.Logger) *DistributionJob {
	return &DistributionJob{service: service, logger: logger}
}

// Handle processes one queued distribution run. Failures return
// asynq.SkipRetry: the run is not idempotent, and a retry after increments
// were applied would distribute twice.
func (j *DistributionJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload jobs.PointSalaryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	result, err := j.service.RunMonthlyDistribution(ctx, payload.Actor, payload.Period)
	if err != nil {
		j.logger.Error("point salary distribution failed",
			slog.String("period", payload.Period),
			slog.Int("workers_processed", result.WorkersProcessed),
			slog.Int64("total", result.TotalPointsDistributed),
			slog.Any("error", err))
		return fmt.Errorf("distribute %s: %v: %w", payload.Period, err, asynq.SkipRetry)
	}
	j.logger.Info("point salary distributed",
		slog.String("period", result.Period),
		slog.Int("workers_processed", result.WorkersProcessed),
		slog.Int64("total", result.TotalPointsDistributed),
		slog.Int("failures", len(result.Errors)))
	return nil
}
