package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	_ "github.com/syair2222/merahputih-ledger/testing"
)

// memLedgerRepo mimics the transactional repository: writes land on a staged
// copy and only reach the base state when fn returns nil.
type memLedgerRepo struct {
	accounts     map[string]Account
	transactions []Transaction

	failDeltaAfter int
	deltaCalls     int
}

func newMemLedgerRepo(accounts ...Account) *memLedgerRepo {
	repo := &memLedgerRepo{accounts: make(map[string]Account), failDeltaAfter: -1}
	for _, acc := range accounts {
		repo.accounts[acc.ID] = acc
	}
	return repo
}

func (r *memLedgerRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	staged := &memLedgerTx{repo: r, accounts: make(map[string]Account, len(r.accounts))}
	for id, acc := range r.accounts {
		staged.accounts[id] = acc
	}
	staged.transactions = append(staged.transactions, r.transactions...)
	if err := fn(ctx, staged); err != nil {
		return err
	}
	r.accounts = staged.accounts
	r.transactions = staged.transactions
	return nil
}

type memLedgerTx struct {
	repo         *memLedgerRepo
	accounts     map[string]Account
	transactions []Transaction
}

func (tx *memLedgerTx) GetAccountsForUpdate(ctx context.Context, ids []string) (AccountSet, error) {
	set := make(AccountSet, len(ids))
	for _, id := range ids {
		if acc, ok := tx.accounts[id]; ok {
			set[id] = acc
		}
	}
	return set, nil
}

func (tx *memLedgerTx) InsertTransaction(ctx context.Context, in PostingInput, plan PostingPlan) (Transaction, error) {
	entry := Transaction{
		ID:          uuid.New(),
		Date:        in.Date,
		Description: in.Description,
		Reference:   in.Reference,
		Status:      TransactionStatusPosted,
		TotalDebit:  plan.TotalDebit,
		TotalCredit: plan.TotalCredit,
		CreatedBy:   in.Actor,
		CreatedAt:   time.Now(),
		PostedBy:    in.Actor,
		PostedAt:    time.Now(),
	}
	tx.transactions = append(tx.transactions, entry)
	return entry, nil
}

func (tx *memLedgerTx) InsertJournalLines(ctx context.Context, txID uuid.UUID, lines []DraftLine) error {
	for i := range tx.transactions {
		if tx.transactions[i].ID != txID {
			continue
		}
		for _, line := range lines {
			tx.transactions[i].Lines = append(tx.transactions[i].Lines, JournalLine{
				TransactionID: txID,
				AccountID:     line.AccountID,
				Debit:         line.Debit,
				Credit:        line.Credit,
				Notes:         line.Notes,
			})
		}
	}
	return nil
}

func (tx *memLedgerTx) ApplyDelta(ctx context.Context, accountID string, delta int64) error {
	tx.repo.deltaCalls++
	if tx.repo.failDeltaAfter >= 0 && tx.repo.deltaCalls > tx.repo.failDeltaAfter {
		return errors.New("storage failure injected")
	}
	acc, ok := tx.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	if !acc.IsActive {
		return ErrAccountInactive
	}
	acc.Balance += delta
	tx.accounts[accountID] = acc
	return nil
}

func (tx *memLedgerTx) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	for _, entry := range tx.transactions {
		if entry.ID == id {
			return entry, nil
		}
	}
	return Transaction{}, ErrTransactionNotFound
}

func (tx *memLedgerTx) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return tx.transactions, nil
}

type countingObserver struct {
	committed int
	rejected  int
}

func (o *countingObserver) PostingCommitted() { o.committed++ }
func (o *countingObserver) PostingRejected()  { o.rejected++ }

type countingInvalidator struct {
	bumps int
}

func (i *countingInvalidator) Bump(ctx context.Context) error {
	i.bumps++
	return nil
}

func seedAccounts() []Account {
	return []Account{
		{ID: "1000", Name: "Kas", Type: AccountTypeAsset, Normal: NormalDebit, Balance: 0, IsActive: true},
		{ID: "4000", Name: "Pendapatan Jasa", Type: AccountTypeRevenue, Normal: NormalCredit, Balance: 0, IsActive: true},
		{ID: "6000", Name: "Beban Operasional", Type: AccountTypeExpense, Normal: NormalDebit, Balance: 0, IsActive: true},
	}
}

func TestPostCommitsHeaderLinesAndBalancesTogether(t *testing.T) {
	repo := newMemLedgerRepo(seedAccounts()...)
	audit := &memAudit{}
	observer := &countingObserver{}
	invalidator := &countingInvalidator{}
	svc := NewService(repo, audit)
	svc.WithObserver(observer)
	svc.WithSnapshotInvalidator(invalidator)

	posted, err := svc.Post(context.Background(), PostingInput{
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Pendapatan jasa simpan pinjam",
		Actor:       "bendahara",
		Lines: []DraftLine{
			{AccountID: "1000", Debit: 250000},
			{AccountID: "4000", Credit: 250000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, TransactionStatusPosted, posted.Status)
	require.Equal(t, int64(250000), posted.TotalDebit)
	require.Equal(t, int64(250000), posted.TotalCredit)
	require.Len(t, posted.Lines, 2)

	require.Equal(t, int64(250000), repo.accounts["1000"].Balance)
	require.Equal(t, int64(250000), repo.accounts["4000"].Balance)
	require.Len(t, repo.transactions, 1)

	require.Equal(t, 1, observer.committed)
	require.Zero(t, observer.rejected)
	require.Equal(t, 1, invalidator.bumps)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "transaction.post", audit.logs[0].Action)
}

func TestPostRollsBackEverythingWhenADeltaFails(t *testing.T) {
	// Three accounts means three deltas; the rollback must hold no matter
	// how many were already applied when the failure hits.
	for failAfter := 0; failAfter < 3; failAfter++ {
		t.Run(fmt.Sprintf("fail after %d deltas", failAfter), func(t *testing.T) {
			repo := newMemLedgerRepo(seedAccounts()...)
			repo.failDeltaAfter = failAfter
			observer := &countingObserver{}
			invalidator := &countingInvalidator{}
			svc := NewService(repo, nil)
			svc.WithObserver(observer)
			svc.WithSnapshotInvalidator(invalidator)

			_, err := svc.Post(context.Background(), PostingInput{
				Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
				Description: "Beban dan pendapatan",
				Actor:       "bendahara",
				Lines: []DraftLine{
					{AccountID: "1000", Debit: 50000},
					{AccountID: "6000", Debit: 20000},
					{AccountID: "4000", Credit: 70000},
				},
			})
			require.Error(t, err)

			// The staged copy is discarded wholesale: no balances, no
			// header, no lines.
			for _, acc := range repo.accounts {
				require.Zero(t, acc.Balance, "account %s", acc.ID)
			}
			require.Empty(t, repo.transactions)
			require.Equal(t, 1, observer.rejected)
			require.Zero(t, observer.committed)
			require.Zero(t, invalidator.bumps)
		})
	}
}

func TestGetTransactionReturnsPostedEntry(t *testing.T) {
	repo := newMemLedgerRepo(seedAccounts()...)
	svc := NewService(repo, nil)

	posted, err := svc.Post(context.Background(), PostingInput{
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Pendapatan jasa simpan pinjam",
		Actor:       "bendahara",
		Lines: []DraftLine{
			{AccountID: "1000", Debit: 250000},
			{AccountID: "4000", Credit: 250000},
		},
	})
	require.NoError(t, err)

	found, err := svc.GetTransaction(context.Background(), posted.ID)
	require.NoError(t, err)
	require.Equal(t, posted.ID, found.ID)
	require.Len(t, found.Lines, 2)

	_, err = svc.GetTransaction(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestPostRejectsInactiveAccountAtCommitTime(t *testing.T) {
	accounts := seedAccounts()
	accounts[1].IsActive = false
	repo := newMemLedgerRepo(accounts...)
	svc := NewService(repo, nil)

	_, err := svc.Post(context.Background(), PostingInput{
		Date:        time.Now(),
		Description: "Posting ke akun nonaktif",
		Actor:       "bendahara",
		Lines: []DraftLine{
			{AccountID: "1000", Debit: 10000},
			{AccountID: "4000", Credit: 10000},
		},
	})
	require.ErrorIs(t, err, ErrAccountInactive)
	require.Empty(t, repo.transactions)
	require.Zero(t, repo.accounts["1000"].Balance)
}

func TestPostRejectsUnbalancedInput(t *testing.T) {
	repo := newMemLedgerRepo(seedAccounts()...)
	observer := &countingObserver{}
	svc := NewService(repo, nil)
	svc.WithObserver(observer)

	_, err := svc.Post(context.Background(), PostingInput{
		Date:        time.Now(),
		Description: "Selisih satu rupiah",
		Actor:       "bendahara",
		Lines: []DraftLine{
			{AccountID: "1000", Debit: 500000},
			{AccountID: "4000", Credit: 499999},
		},
	})
	require.ErrorIs(t, err, ErrUnbalanced)
	require.Equal(t, 1, observer.rejected)
	require.Empty(t, repo.transactions)
}

func TestPostRequiresActorAndDescription(t *testing.T) {
	repo := newMemLedgerRepo(seedAccounts()...)
	svc := NewService(repo, nil)

	lines := []DraftLine{
		{AccountID: "1000", Debit: 1000},
		{AccountID: "4000", Credit: 1000},
	}
	_, err := svc.Post(context.Background(), PostingInput{Description: "x", Lines: lines})
	require.Error(t, err)
	_, err = svc.Post(context.Background(), PostingInput{Actor: "bendahara", Lines: lines})
	require.Error(t, err)
}

func TestPostDefaultsDateToClock(t *testing.T) {
	repo := newMemLedgerRepo(seedAccounts()...)
	svc := NewService(repo, nil)
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return fixed })

	posted, err := svc.Post(context.Background(), PostingInput{
		Description: "Tanpa tanggal eksplisit",
		Actor:       "bendahara",
		Lines: []DraftLine{
			{AccountID: "1000", Debit: 1000},
			{AccountID: "4000", Credit: 1000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, fixed, posted.Date)
}
