package reports

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/syair2222/merahputih-ledger/internal/ledger"
)

// RepositoryPort supplies the two statement data sources. Cumulative reads
// come from running account balances across every account, active or not:
// deactivated accounts keep their balance and the book stops summing to zero
// without them. Periodic activity is aggregated from the journal lines of
// POSTED transactions inside the window. These are deliberately separate
// queries: a period request never falls back to cumulative numbers.
type RepositoryPort interface {
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	AccountActivity(ctx context.Context, from, to time.Time) ([]ledger.AccountActivity, error)
}

// IntegrityObserver counts detected integrity faults.
type IntegrityObserver interface {
	IntegrityFault()
}

// Window bounds a periodic report by transaction date, inclusive.
type Window struct {
	From time.Time
	To   time.Time
}

// Service derives financial statements. It never mutates ledger state.
type Service struct {
	repo     RepositoryPort
	cache    *Cache
	observer IntegrityObserver
	logger   *slog.Logger
	group    singleflight.Group
}

// NewService constructs the reporting engine.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// WithObserver attaches integrity metrics.
func (s *Service) WithObserver(obs IntegrityObserver) {
	s.observer = obs
}

// TrialBalance renders every account balance in debit/credit columns.
func (s *Service) TrialBalance(ctx context.Context, window *Window) (TrialBalance, error) {
	rows, err := s.balances(ctx, window)
	if err != nil {
		return TrialBalance{}, err
	}
	tb, err := BuildTrialBalance(rows)
	if err != nil {
		return TrialBalance{}, s.reportFault(err)
	}
	return tb, nil
}

// IncomeStatement renders revenues, expenses, and net income.
func (s *Service) IncomeStatement(ctx context.Context, window *Window) (IncomeStatement, error) {
	rows, err := s.balances(ctx, window)
	if err != nil {
		return IncomeStatement{}, err
	}
	return BuildIncomeStatement(rows), nil
}

// BalanceSheet renders assets against liabilities, equity, and the
// current-period result.
func (s *Service) BalanceSheet(ctx context.Context, window *Window) (BalanceSheet, error) {
	rows, err := s.balances(ctx, window)
	if err != nil {
		return BalanceSheet{}, err
	}
	income := BuildIncomeStatement(rows)
	bs, err := BuildBalanceSheet(rows, income.NetIncome)
	if err != nil {
		return BalanceSheet{}, s.reportFault(err)
	}
	return bs, nil
}

func (s *Service) reportFault(err error) error {
	if errors.Is(err, ledger.ErrIntegrity) {
		if s.observer != nil {
			s.observer.IntegrityFault()
		}
		if s.logger != nil {
			s.logger.Error("ledger integrity fault detected", slog.Any("error", err))
		}
	}
	return err
}

func (s *Service) balances(ctx context.Context, window *Window) ([]AccountBalance, error) {
	parts := []string{"reports", "balances", "cumulative"}
	if window != nil {
		parts = []string{"reports", "balances", window.From.Format("2006-01-02"), window.To.Format("2006-01-02")}
	}
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		return nil, err
	}
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var rows []AccountBalance
		err := s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
			return s.loadBalances(ctx, window)
		})
		return rows, err
	})
	if err != nil {
		return nil, err
	}
	return result.([]AccountBalance), nil
}

func (s *Service) loadBalances(ctx context.Context, window *Window) ([]AccountBalance, error) {
	if window == nil {
		accounts, err := s.repo.ListAccounts(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]AccountBalance, 0, len(accounts))
		for _, acc := range accounts {
			rows = append(rows, AccountBalance{
				ID:      acc.ID,
				Name:    acc.Name,
				Type:    acc.Type,
				Normal:  acc.Normal,
				Balance: acc.Balance,
			})
		}
		return rows, nil
	}
	activity, err := s.repo.AccountActivity(ctx, window.From, window.To)
	if err != nil {
		return nil, err
	}
	rows := make([]AccountBalance, 0, len(activity))
	for _, act := range activity {
		rows = append(rows, AccountBalance{
			ID:      act.ID,
			Name:    act.Name,
			Type:    act.Type,
			Normal:  act.Normal,
			Debit:   act.Debit,
			Credit:  act.Credit,
			Balance: ledger.SignedDelta(act.Normal, act.Debit, act.Credit),
		})
	}
	return rows, nil
}
