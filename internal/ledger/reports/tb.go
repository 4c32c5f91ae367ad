package reports

import (
	"fmt"

	"github.com/syair2222/merahputih-ledger/internal/ledger"
)

// AccountBalance is one account's contribution to a statement. Balance is
// signed in the account's normal orientation; Debit and Credit carry raw
// period activity when the row comes from the periodic computation.
type AccountBalance struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Type    ledger.AccountType `json:"type"`
	Normal  ledger.NormalSide  `json:"normal"`
	Debit   int64             `json:"debit"`
	Credit  int64             `json:"credit"`
	Balance int64             `json:"balance"`
}

// TrialBalanceEntry is one row of the trial balance.
type TrialBalanceEntry struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Debit     int64  `json:"debit"`
	Credit    int64  `json:"credit"`
}

// TrialBalance lists every account's balance split into debit/credit columns.
type TrialBalance struct {
	Entries     []TrialBalanceEntry `json:"entries"`
	TotalDebit  int64               `json:"total_debit"`
	TotalCredit int64               `json:"total_credit"`
}

// BuildTrialBalance maps each signed balance back into a debit or credit
// column per the account's normal side and accumulates grand totals. A totals
// mismatch means out-of-band balance mutation or an engine bug and is returned
// as ledger.ErrIntegrity rather than rendered silently.
func BuildTrialBalance(rows []AccountBalance) (TrialBalance, error) {
	tb := TrialBalance{Entries: make([]TrialBalanceEntry, 0, len(rows))}
	for _, row := range rows {
		entry := TrialBalanceEntry{AccountID: row.ID, Name: row.Name}
		onNormal := row.Balance >= 0
		amount := row.Balance
		if !onNormal {
			amount = -amount
		}
		switch {
		case (row.Normal == ledger.NormalDebit) == onNormal:
			entry.Debit = amount
		default:
			entry.Credit = amount
		}
		tb.Entries = append(tb.Entries, entry)
		tb.TotalDebit += entry.Debit
		tb.TotalCredit += entry.Credit
	}
	if tb.TotalDebit != tb.TotalCredit {
		return TrialBalance{}, fmt.Errorf("%w: trial balance debit %d credit %d", ledger.ErrIntegrity, tb.TotalDebit, tb.TotalCredit)
	}
	return tb, nil
}
