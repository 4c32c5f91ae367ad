package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether the account type is a known category.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// NormalSide identifies the side on which an account balance grows.
type NormalSide string

const (
	NormalDebit  NormalSide = "DEBIT"
	NormalCredit NormalSide = "CREDIT"
)

// NormalSideFor derives the normal balance from the account type. The pairing
// is fixed: asset and expense accounts grow on the debit side, the rest on the
// credit side.
func NormalSideFor(t AccountType) NormalSide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalDebit
	default:
		return NormalCredit
	}
}

// TransactionStatus enumerates journal header lifecycle values. VOID is a
// declared future state; no code path transitions a POSTED entry to it.
type TransactionStatus string

const (
	TransactionStatusDraft  TransactionStatus = "DRAFT"
	TransactionStatusPosted TransactionStatus = "POSTED"
	TransactionStatusVoid   TransactionStatus = "VOID"
)

// Account models a chart of accounts node. Balance is a signed amount in
// minor currency units, oriented by Normal.
type Account struct {
	ID        string
	Name      string
	Type      AccountType
	Normal    NormalSide
	Balance   int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is a posted journal header. Totals are always derived from the
// lines, never entered independently.
type Transaction struct {
	ID          uuid.UUID
	Date        time.Time
	Description string
	Reference   string
	Status      TransactionStatus
	TotalDebit  int64
	TotalCredit int64
	CreatedBy   string
	CreatedAt   time.Time
	PostedBy    string
	PostedAt    time.Time
	Lines       []JournalLine
}

// JournalLine stores one debit-or-credit entry within a transaction.
type JournalLine struct {
	ID            int64
	TransactionID uuid.UUID
	AccountID     string
	Debit         int64
	Credit        int64
	Notes         string
	CreatedAt     time.Time
}

// DraftLine is a proposed journal line before validation.
type DraftLine struct {
	AccountID string
	Debit     int64
	Credit    int64
	Notes     string
}

// AccountDelta carries the signed balance change for one account.
type AccountDelta struct {
	AccountID string
	Delta     int64
}

// PostingPlan is the validated output of the journal validator: the lines plus
// the per-account net deltas the engine will apply. Deltas are ordered by
// account id for deterministic application.
type PostingPlan struct {
	Lines       []DraftLine
	TotalDebit  int64
	TotalCredit int64
	Deltas      []AccountDelta
}

// PostingInput groups the fields required to post a transaction.
type PostingInput struct {
	Date        time.Time
	Description string
	Reference   string
	Actor       string
	Lines       []DraftLine
}

// AccountActivity aggregates one account's posted debits and credits over a
// date window.
type AccountActivity struct {
	ID     string
	Name   string
	Type   AccountType
	Normal NormalSide
	Debit  int64
	Credit int64
}

// AccountSpec describes a new chart of accounts entry. The normal side is
// derived, never supplied.
type AccountSpec struct {
	ID   string
	Name string
	Type AccountType
}

var (
	// ErrTooFewLines indicates less than two journal lines.
	ErrTooFewLines = errors.New("ledger: transaction requires at least two lines")
	// ErrLineSides indicates a line with both sides set, or neither.
	ErrLineSides = errors.New("ledger: line must have exactly one nonzero side")
	// ErrNegativeAmount indicates a negative debit or credit.
	ErrNegativeAmount = errors.New("ledger: amounts must not be negative")
	// ErrUnbalanced indicates sum(debit) != sum(credit).
	ErrUnbalanced = errors.New("ledger: debits and credits must balance")
	// ErrAccountNotFound indicates a missing account reference.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrAccountInactive indicates a posting against an inactive account.
	ErrAccountInactive = errors.New("ledger: account is inactive")
	// ErrAccountExists indicates a duplicate account id on creation.
	ErrAccountExists = errors.New("ledger: account already exists")
	// ErrInvalidAccountType indicates an unknown CoA category.
	ErrInvalidAccountType = errors.New("ledger: invalid account type")
	// ErrTransactionNotFound indicates a missing journal header.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")
	// ErrIntegrity indicates a recomputed statement identity failed to hold.
	// It points at out-of-band balance mutation or an engine bug and must
	// never be swallowed.
	ErrIntegrity = errors.New("ledger: integrity fault, statements out of balance")
)

// SignedDelta converts a line's contribution into the account's balance
// orientation: debit minus credit for DEBIT-normal accounts, the reverse for
// CREDIT-normal ones. The engine and the reporting layer must agree on this.
func SignedDelta(normal NormalSide, debit, credit int64) int64 {
	if normal == NormalDebit {
		return debit - credit
	}
	return credit - debit
}
