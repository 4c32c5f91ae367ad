package reports

import "github.com/syair2222/merahputih-ledger/internal/ledger"

// StatementLine is one account row inside a statement section.
type StatementLine struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Amount    int64  `json:"amount"`
}

// IncomeStatement partitions revenue and expense accounts.
type IncomeStatement struct {
	Revenues      []StatementLine `json:"revenues"`
	TotalRevenue  int64           `json:"total_revenue"`
	Expenses      []StatementLine `json:"expenses"`
	TotalExpenses int64           `json:"total_expenses"`
	NetIncome     int64           `json:"net_income"`
}

// BuildIncomeStatement aggregates REVENUE and EXPENSE accounts. Rows arrive
// ordered by account id, so the sections stay in reporting order.
func BuildIncomeStatement(rows []AccountBalance) IncomeStatement {
	out := IncomeStatement{}
	for _, row := range rows {
		line := StatementLine{AccountID: row.ID, Name: row.Name, Amount: row.Balance}
		switch row.Type {
		case ledger.AccountTypeRevenue:
			out.Revenues = append(out.Revenues, line)
			out.TotalRevenue += line.Amount
		case ledger.AccountTypeExpense:
			out.Expenses = append(out.Expenses, line)
			out.TotalExpenses += line.Amount
		}
	}
	out.NetIncome = out.TotalRevenue - out.TotalExpenses
	return out
}
