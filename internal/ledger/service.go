package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syair2222/merahputih-ledger/internal/shared"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SnapshotInvalidator lets the engine signal report caches after a commit.
type SnapshotInvalidator interface {
	Bump(ctx context.Context) error
}

// PostingObserver receives counters for posted and rejected transactions.
type PostingObserver interface {
	PostingCommitted()
	PostingRejected()
}

// Service is the ledger engine: it commits validated posting plans as a
// single atomic unit. Header, lines, and balance deltas become visible
// together or not at all.
type Service struct {
	repo       RepositoryPort
	audit      AuditPort
	invalidate SnapshotInvalidator
	observer   PostingObserver
	now        func() time.Time
}

// NewService constructs the ledger engine.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithSnapshotInvalidator attaches a report cache invalidator.
func (s *Service) WithSnapshotInvalidator(inv SnapshotInvalidator) {
	s.invalidate = inv
}

// WithObserver attaches posting metrics.
func (s *Service) WithObserver(obs PostingObserver) {
	s.observer = obs
}

// Post validates and commits a transaction. The draft lines are re-validated
// inside the database transaction against row-locked accounts, so an account
// flipped inactive between the caller's pre-check and the commit still rejects
// the whole posting. Callers may retry the entire input after any failure.
func (s *Service) Post(ctx context.Context, input PostingInput) (Transaction, error) {
	if strings.TrimSpace(input.Actor) == "" {
		return Transaction{}, errors.New("ledger: actor required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return Transaction{}, errors.New("ledger: description required")
	}
	if input.Date.IsZero() {
		input.Date = s.now()
	}
	var posted Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		accounts, err := tx.GetAccountsForUpdate(ctx, distinctAccountIDs(input.Lines))
		if err != nil {
			return err
		}
		plan, err := BuildPlan(input.Lines, accounts)
		if err != nil {
			return err
		}
		header, err := tx.InsertTransaction(ctx, input, plan)
		if err != nil {
			return err
		}
		if err := tx.InsertJournalLines(ctx, header.ID, plan.Lines); err != nil {
			return err
		}
		for _, delta := range plan.Deltas {
			if err := tx.ApplyDelta(ctx, delta.AccountID, delta.Delta); err != nil {
				return err
			}
		}
		header.Lines = toJournalLines(header.ID, plan.Lines, s.now())
		posted = header
		return nil
	})
	if err != nil {
		if s.observer != nil {
			s.observer.PostingRejected()
		}
		return Transaction{}, err
	}
	if s.observer != nil {
		s.observer.PostingCommitted()
	}
	if s.invalidate != nil {
		_ = s.invalidate.Bump(ctx)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    input.Actor,
			Action:   "transaction.post",
			Entity:   "transaction",
			EntityID: posted.ID.String(),
			Meta: map[string]any{
				"total_debit":  posted.TotalDebit,
				"total_credit": posted.TotalCredit,
				"lines":        len(posted.Lines),
			},
			At: s.now(),
		})
	}
	return posted, nil
}

// GetTransaction retrieves one journal header with its lines.
func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	var entry Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = tx.GetTransaction(ctx, id)
		return err
	})
	return entry, err
}

// ListTransactions retrieves posted journal headers with their lines.
func (s *Service) ListTransactions(ctx context.Context) ([]Transaction, error) {
	var entries []Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entries, err = tx.ListTransactions(ctx)
		return err
	})
	return entries, err
}

func distinctAccountIDs(lines []DraftLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	return ids
}

func toJournalLines(txID uuid.UUID, lines []DraftLine, ts time.Time) []JournalLine {
	out := make([]JournalLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, JournalLine{
			TransactionID: txID,
			AccountID:     line.AccountID,
			Debit:         line.Debit,
			Credit:        line.Credit,
			Notes:         line.Notes,
			CreatedAt:     ts,
		})
	}
	return out
}
