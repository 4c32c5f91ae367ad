package reports

import (
	"fmt"

	"github.com/syair2222/merahputih-ledger/internal/ledger"
)

// BalanceSheet partitions balances into assets, liabilities, and equity, with
// the current-period result folded into the equity side.
type BalanceSheet struct {
	Assets                    []StatementLine `json:"assets"`
	Liabilities               []StatementLine `json:"liabilities"`
	Equity                    []StatementLine `json:"equity"`
	TotalAssets               int64           `json:"total_assets"`
	TotalLiabilities          int64           `json:"total_liabilities"`
	TotalEquity               int64           `json:"total_equity"`
	NetIncome                 int64           `json:"net_income"`
	TotalLiabilitiesAndEquity int64           `json:"total_liabilities_and_equity"`
}

// BuildBalanceSheet aggregates ASSET, LIABILITY, and EQUITY accounts and
// checks the accounting identity assets = liabilities + equity + net income
// in exact integer arithmetic. A violation is ledger.ErrIntegrity.
func BuildBalanceSheet(rows []AccountBalance, netIncome int64) (BalanceSheet, error) {
	out := BalanceSheet{NetIncome: netIncome}
	for _, row := range rows {
		line := StatementLine{AccountID: row.ID, Name: row.Name, Amount: row.Balance}
		switch row.Type {
		case ledger.AccountTypeAsset:
			out.Assets = append(out.Assets, line)
			out.TotalAssets += line.Amount
		case ledger.AccountTypeLiability:
			out.Liabilities = append(out.Liabilities, line)
			out.TotalLiabilities += line.Amount
		case ledger.AccountTypeEquity:
			out.Equity = append(out.Equity, line)
			out.TotalEquity += line.Amount
		}
	}
	out.TotalLiabilitiesAndEquity = out.TotalLiabilities + out.TotalEquity + netIncome
	if out.TotalAssets != out.TotalLiabilitiesAndEquity {
		return BalanceSheet{}, fmt.Errorf("%w: assets %d vs liabilities+equity %d", ledger.ErrIntegrity, out.TotalAssets, out.TotalLiabilitiesAndEquity)
	}
	return out, nil
}
