package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/syair2222/merahputih-ledger/internal/shared"
)

// AccountRepository persists chart of accounts entries. Balance mutation is
// deliberately absent here: ApplyDelta lives on TxRepository and runs only
// inside an engine commit.
type AccountRepository interface {
	CreateAccount(ctx context.Context, acc Account) error
	GetAccount(ctx context.Context, id string) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	ListActiveAccounts(ctx context.Context) ([]Account, error)
	SetAccountActive(ctx context.Context, id string, active bool) error
}

// Registry is the source of truth for accounts and their running balances.
type Registry struct {
	repo  AccountRepository
	audit AuditPort
	now   func() time.Time
}

// NewRegistry constructs the account registry.
func NewRegistry(repo AccountRepository, audit AuditPort) *Registry {
	return &Registry{repo: repo, audit: audit, now: time.Now}
}

// Create validates the spec, derives the normal side from the type, and
// persists the account with a zero balance.
func (r *Registry) Create(ctx context.Context, actor string, spec AccountSpec) (Account, error) {
	spec.ID = strings.TrimSpace(spec.ID)
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.ID == "" {
		return Account{}, errors.New("ledger: account id required")
	}
	if spec.Name == "" {
		return Account{}, errors.New("ledger: account name required")
	}
	if !spec.Type.Valid() {
		return Account{}, ErrInvalidAccountType
	}
	now := r.now()
	acc := Account{
		ID:        spec.ID,
		Name:      spec.Name,
		Type:      spec.Type,
		Normal:    NormalSideFor(spec.Type),
		Balance:   0,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.repo.CreateAccount(ctx, acc); err != nil {
		return Account{}, err
	}
	if r.audit != nil {
		_ = r.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "account.create",
			Entity:   "account",
			EntityID: acc.ID,
			Meta:     map[string]any{"type": string(acc.Type), "normal": string(acc.Normal)},
			At:       now,
		})
	}
	return acc, nil
}

// Get returns one account by business key.
func (r *Registry) Get(ctx context.Context, id string) (Account, error) {
	return r.repo.GetAccount(ctx, id)
}

// List returns every account ordered by id.
func (r *Registry) List(ctx context.Context) ([]Account, error) {
	return r.repo.ListAccounts(ctx)
}

// ListActive returns active accounts ordered by id, the display and
// reporting order.
func (r *Registry) ListActive(ctx context.Context) ([]Account, error) {
	return r.repo.ListActiveAccounts(ctx)
}

// Deactivate flags an account so it no longer receives postings. Accounts are
// never deleted; history stays referentially intact.
func (r *Registry) Deactivate(ctx context.Context, actor, id string) error {
	if err := r.repo.SetAccountActive(ctx, id, false); err != nil {
		return err
	}
	if r.audit != nil {
		_ = r.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "account.deactivate",
			Entity:   "account",
			EntityID: id,
			At:       r.now(),
		})
	}
	return nil
}
