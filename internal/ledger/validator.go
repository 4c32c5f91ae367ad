package ledger

import (
	"fmt"
	"sort"
)

// AccountLookup resolves accounts referenced by draft lines. Implementations
// must not perform writes; the validator is a pure check.
type AccountLookup interface {
	LookupAccount(id string) (Account, bool)
}

// AccountSet is an in-memory AccountLookup.
type AccountSet map[string]Account

// LookupAccount implements AccountLookup.
func (s AccountSet) LookupAccount(id string) (Account, bool) {
	acc, ok := s[id]
	return acc, ok
}

// BuildPlan validates draft lines and produces a posting plan. Checks run in a
// fixed order so every rejection carries a single, specific reason:
// line count, per-line side rules, account existence and activity, and the
// balance equation in exact minor units. The result is never partially valid.
func BuildPlan(lines []DraftLine, accounts AccountLookup) (PostingPlan, error) {
	if len(lines) < 2 {
		return PostingPlan{}, ErrTooFewLines
	}
	for idx, line := range lines {
		if line.Debit < 0 || line.Credit < 0 {
			return PostingPlan{}, fmt.Errorf("%w: line %d", ErrNegativeAmount, idx)
		}
		if (line.Debit > 0) == (line.Credit > 0) {
			return PostingPlan{}, fmt.Errorf("%w: line %d", ErrLineSides, idx)
		}
	}
	deltas := make(map[string]int64)
	var totalDebit, totalCredit int64
	for idx, line := range lines {
		acc, ok := accounts.LookupAccount(line.AccountID)
		if !ok {
			return PostingPlan{}, fmt.Errorf("%w: line %d account %s", ErrAccountNotFound, idx, line.AccountID)
		}
		if !acc.IsActive {
			return PostingPlan{}, fmt.Errorf("%w: line %d account %s", ErrAccountInactive, idx, line.AccountID)
		}
		deltas[line.AccountID] += SignedDelta(acc.Normal, line.Debit, line.Credit)
		totalDebit += line.Debit
		totalCredit += line.Credit
	}
	if totalDebit != totalCredit {
		return PostingPlan{}, fmt.Errorf("%w: debit %d credit %d", ErrUnbalanced, totalDebit, totalCredit)
	}
	plan := PostingPlan{
		Lines:       append([]DraftLine(nil), lines...),
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Deltas:      make([]AccountDelta, 0, len(deltas)),
	}
	for id, delta := range deltas {
		plan.Deltas = append(plan.Deltas, AccountDelta{AccountID: id, Delta: delta})
	}
	sort.Slice(plan.Deltas, func(i, j int) bool { return plan.Deltas[i].AccountID < plan.Deltas[j].AccountID })
	return plan, nil
}
