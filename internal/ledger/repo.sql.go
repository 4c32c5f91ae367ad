package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/syair2222/merahputih-ledger/internal/platform/db"
)

// Repository persists ledger entities.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside one commit unit.
type TxRepository interface {
	GetAccountsForUpdate(ctx context.Context, ids []string) (AccountSet, error)
	InsertTransaction(ctx context.Context, in PostingInput, plan PostingPlan) (Transaction, error)
	InsertJournalLines(ctx context.Context, txID uuid.UUID, lines []DraftLine) error
	ApplyDelta(ctx context.Context, accountID string, delta int64) error
	GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error)
	ListTransactions(ctx context.Context) ([]Transaction, error)
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes fn within a repeatable-read transaction. Any error rolls
// back every write performed by fn.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const accountColumns = `id, name, type, normal_side, balance, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Normal, &a.Balance, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// CreateAccount inserts a new chart of accounts entry.
func (r *Repository) CreateAccount(ctx context.Context, acc Account) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO accounts (id, name, type, normal_side, balance, is_active)
VALUES ($1,$2,$3,$4,$5,$6)`, acc.ID, acc.Name, acc.Type, acc.Normal, acc.Balance, acc.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAccountExists
		}
		return err
	}
	return nil
}

// GetAccount fetches one account by business key.
func (r *Repository) GetAccount(ctx context.Context, id string) (Account, error) {
	acc, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return acc, nil
}

// ListAccounts returns every account ordered by id.
func (r *Repository) ListAccounts(ctx context.Context) ([]Account, error) {
	return r.listAccounts(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
}

// ListActiveAccounts returns active accounts ordered by id.
func (r *Repository) ListActiveAccounts(ctx context.Context) ([]Account, error) {
	return r.listAccounts(ctx, `SELECT `+accountColumns+` FROM accounts WHERE is_active ORDER BY id`)
}

func (r *Repository) listAccounts(ctx context.Context, query string) ([]Account, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Normal, &a.Balance, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SetAccountActive toggles the active flag.
func (r *Repository) SetAccountActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE accounts SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// AccountActivity sums posted journal lines per account inside the window.
// Only POSTED transactions count; the query is independent of running
// balances so periodic statements never borrow cumulative numbers.
func (r *Repository) AccountActivity(ctx context.Context, from, to time.Time) ([]AccountActivity, error) {
	rows, err := r.pool.Query(ctx, `SELECT a.id, a.name, a.type, a.normal_side,
COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
FROM accounts a
JOIN journal_lines l ON l.account_id = a.id
JOIN transactions t ON t.id = l.transaction_id
WHERE t.status = 'POSTED' AND t.date BETWEEN $1 AND $2
GROUP BY a.id, a.name, a.type, a.normal_side
ORDER BY a.id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountActivity
	for rows.Next() {
		var act AccountActivity
		if err := rows.Scan(&act.ID, &act.Name, &act.Type, &act.Normal, &act.Debit, &act.Credit); err != nil {
			return nil, err
		}
		out = append(out, act)
	}
	return out, rows.Err()
}

func (r *txRepository) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	var t Transaction
	err := r.tx.QueryRow(ctx, `SELECT id, date, description, reference, status, total_debit, total_credit, created_by, created_at, posted_by, posted_at
FROM transactions WHERE id=$1`, id).
		Scan(&t.ID, &t.Date, &t.Description, &t.Reference, &t.Status, &t.TotalDebit, &t.TotalCredit, &t.CreatedBy, &t.CreatedAt, &t.PostedBy, &t.PostedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, err
	}
	rows, err := r.tx.Query(ctx, `SELECT id, transaction_id, account_id, debit, credit, notes, created_at
FROM journal_lines WHERE transaction_id=$1 ORDER BY id`, id)
	if err != nil {
		return Transaction{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.ID, &line.TransactionID, &line.AccountID, &line.Debit, &line.Credit, &line.Notes, &line.CreatedAt); err != nil {
			return Transaction{}, err
		}
		t.Lines = append(t.Lines, line)
	}
	return t, rows.Err()
}

func (r *txRepository) GetAccountsForUpdate(ctx context.Context, ids []string) (AccountSet, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	set := make(AccountSet, len(ids))
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Normal, &a.Balance, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		set[a.ID] = a
	}
	return set, rows.Err()
}

func (r *txRepository) InsertTransaction(ctx context.Context, in PostingInput, plan PostingPlan) (Transaction, error) {
	entry := Transaction{
		ID:          uuid.New(),
		Date:        in.Date,
		Description: in.Description,
		Reference:   in.Reference,
		Status:      TransactionStatusPosted,
		TotalDebit:  plan.TotalDebit,
		TotalCredit: plan.TotalCredit,
		CreatedBy:   in.Actor,
		PostedBy:    in.Actor,
	}
	row := r.tx.QueryRow(ctx, `INSERT INTO transactions (id, date, description, reference, status, total_debit, total_credit, created_by, posted_by)
VALUES ($1,$2,$3,$4,'POSTED',$5,$6,$7,$7) RETURNING created_at, posted_at`,
		entry.ID, entry.Date, entry.Description, entry.Reference, entry.TotalDebit, entry.TotalCredit, entry.CreatedBy)
	if err := row.Scan(&entry.CreatedAt, &entry.PostedAt); err != nil {
		return Transaction{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertJournalLines(ctx context.Context, txID uuid.UUID, lines []DraftLine) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_lines (transaction_id, account_id, debit, credit, notes)
VALUES ($1,$2,$3,$4,$5)`, txID, line.AccountID, line.Debit, line.Credit, line.Notes); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDelta adds the signed delta to the account balance. The is_active
// guard re-checks activity at commit time under the row lock.
func (r *txRepository) ApplyDelta(ctx context.Context, accountID string, delta int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET balance = balance + $2, updated_at = NOW() WHERE id=$1 AND is_active`, accountID, delta)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var active bool
		err := r.tx.QueryRow(ctx, `SELECT is_active FROM accounts WHERE id=$1`, accountID).Scan(&active)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		return ErrAccountInactive
	}
	return nil
}

func (r *txRepository) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, date, description, reference, status, total_debit, total_credit, created_by, created_at, posted_by, posted_at
FROM transactions ORDER BY posted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Description, &t.Reference, &t.Status, &t.TotalDebit, &t.TotalCredit, &t.CreatedBy, &t.CreatedAt, &t.PostedBy, &t.PostedAt); err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	lineRows, err := r.tx.Query(ctx, `SELECT id, transaction_id, account_id, debit, credit, notes, created_at FROM journal_lines ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	byTx := make(map[uuid.UUID][]JournalLine)
	for lineRows.Next() {
		var line JournalLine
		if err := lineRows.Scan(&line.ID, &line.TransactionID, &line.AccountID, &line.Debit, &line.Credit, &line.Notes, &line.CreatedAt); err != nil {
			return nil, err
		}
		byTx[line.TransactionID] = append(byTx[line.TransactionID], line)
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = byTx[entries[i].ID]
	}
	return entries, nil
}
