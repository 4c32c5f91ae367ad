package points

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/syair2222/merahputih-ledger/internal/ledger"
	"github.com/syair2222/merahputih-ledger/internal/shared"
)

// LedgerPort is the only route from this package into the double-entry
// ledger: one aggregate posting per distribution run.
type LedgerPort interface {
	Post(ctx context.Context, input ledger.PostingInput) (ledger.Transaction, error)
}

// AuditPort records point events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// DistributionObserver counts completed runs.
type DistributionObserver interface {
	DistributionCompleted(workers int, total int64)
}

// ServiceConfig names the ledger accounts for the aggregate posting and
// bounds the per-worker fan-out.
type ServiceConfig struct {
	ExpenseAccountID string
	PayableAccountID string
	Concurrency      int
}

// Service distributes the monthly point salary and handles one-off awards.
//
// Distribution is NOT idempotent per period: running the same period twice
// distributes twice. The scheduler or operator owns the guard; this component
// only stamps the period onto each award for later reconciliation.
type Service struct {
	repo     Repository
	ledger   LedgerPort
	audit    AuditPort
	observer DistributionObserver
	cfg      ServiceConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the distributor.
func NewService(repo Repository, ledgerPort LedgerPort, audit AuditPort, cfg ServiceConfig, logger *slog.Logger) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &Service{repo: repo, ledger: ledgerPort, audit: audit, cfg: cfg, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithObserver attaches distribution metrics.
func (s *Service) WithObserver(obs DistributionObserver) {
	s.observer = obs
}

// RunMonthlyDistribution awards each eligible worker their monthly point
// salary and posts one aggregate ledger entry for the applied total.
// Per-worker failures are collected, never fatal for the rest of the run.
// When the aggregate posting itself fails after increments were applied, the
// result reports what was applied alongside the error; reconciliation is an
// explicit operator action, not something this method hides.
func (s *Service) RunMonthlyDistribution(ctx context.Context, actor, period string) (DistributionResult, error) {
	result := DistributionResult{Period: period}
	if period == "" {
		return result, errors.New("points: period required")
	}
	workers, err := s.repo.ListEligibleWorkers(ctx)
	if err != nil {
		return result, err
	}
	if len(workers) == 0 {
		return result, ErrNoEligibleWorkers
	}

	pool, err := ants.NewPool(s.cfg.Concurrency)
	if err != nil {
		return result, err
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, worker := range workers {
		worker := worker
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := s.processWorker(ctx, worker, actor, period); err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, DistributionError{
					WorkerID: worker.ID,
					Name:     worker.Name,
					Reason:   err.Error(),
				})
				mu.Unlock()
				return
			}
			mu.Lock()
			result.WorkersProcessed++
			result.TotalPointsDistributed += worker.MonthlyPointSalary
			mu.Unlock()
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			result.Errors = append(result.Errors, DistributionError{
				WorkerID: worker.ID,
				Name:     worker.Name,
				Reason:   fmt.Sprintf("submit: %v", err),
			})
			mu.Unlock()
		}
	}
	wg.Wait()
	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].WorkerID < result.Errors[j].WorkerID })

	if result.TotalPointsDistributed > 0 {
		posted, err := s.ledger.Post(ctx, ledger.PostingInput{
			Date:        s.now(),
			Description: "Distribusi gaji poin pekerja " + period,
			Reference:   "POINTS-" + period,
			Actor:       actor,
			Lines: []ledger.DraftLine{
				{AccountID: s.cfg.ExpenseAccountID, Debit: result.TotalPointsDistributed},
				{AccountID: s.cfg.PayableAccountID, Credit: result.TotalPointsDistributed},
			},
		})
		if err != nil {
			// Point balances were already incremented; surface the gap
			// loudly so the operator can post a compensating entry.
			if s.logger != nil {
				s.logger.Error("aggregate point salary posting failed after increments",
					slog.String("period", period),
					slog.Int64("total", result.TotalPointsDistributed),
					slog.Any("error", err))
			}
			return result, fmt.Errorf("points: aggregate posting failed after %d increments: %w", result.WorkersProcessed, err)
		}
		result.TransactionID = posted.ID
	}

	if s.observer != nil {
		s.observer.DistributionCompleted(result.WorkersProcessed, result.TotalPointsDistributed)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "points.distribute",
			Entity:   "point_distribution",
			EntityID: period,
			Meta: map[string]any{
				"workers_processed": result.WorkersProcessed,
				"total":             result.TotalPointsDistributed,
				"failures":          len(result.Errors),
			},
			At: s.now(),
		})
	}
	return result, nil
}

func (s *Service) processWorker(ctx context.Context, worker Worker, actor, period string) error {
	if worker.MemberID == nil || *worker.MemberID == "" {
		return ErrMemberMissing
	}
	exists, err := s.repo.MemberExists(ctx, *worker.MemberID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrMemberMissing
	}
	if err := s.repo.AddPoints(ctx, worker.ID, worker.MonthlyPointSalary); err != nil {
		return err
	}
	return s.repo.InsertAward(ctx, PointAward{
		WorkerID:  worker.ID,
		MemberID:  worker.MemberID,
		Amount:    worker.MonthlyPointSalary,
		Reason:    "monthly point salary",
		Period:    period,
		AwardedBy: actor,
	})
}

// ListAwards returns recorded awards, optionally filtered by period. This is
// the reconciliation view for distribution runs.
func (s *Service) ListAwards(ctx context.Context, period string) ([]PointAward, error) {
	return s.repo.ListAwards(ctx, period)
}

// AwardPoints is the single entry point for external collaborators (the
// facility-application workflow on loan approval). It increments the linked
// worker's point balance and records the award; no ledger entry is posted.
func (s *Service) AwardPoints(ctx context.Context, actor, memberID string, amount int64, reason string) error {
	if memberID == "" {
		return errors.New("points: member id required")
	}
	if amount <= 0 {
		return errors.New("points: amount must be positive")
	}
	if reason == "" {
		return errors.New("points: reason required")
	}
	worker, err := s.repo.FindWorkerByMember(ctx, memberID)
	if err != nil {
		return err
	}
	if err := s.repo.AddPoints(ctx, worker.ID, amount); err != nil {
		return err
	}
	if err := s.repo.InsertAward(ctx, PointAward{
		WorkerID:  worker.ID,
		MemberID:  worker.MemberID,
		Amount:    amount,
		Reason:    reason,
		AwardedBy: actor,
	}); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "points.award",
			Entity:   "worker",
			EntityID: fmt.Sprintf("%d", worker.ID),
			Meta:     map[string]any{"member_id": memberID, "amount": amount, "reason": reason},
			At:       s.now(),
		})
	}
	return nil
}
