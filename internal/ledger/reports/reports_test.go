package reports

import (
	"errors"
	"testing"

	"github.com/syair2222/merahputih-ledger/internal/ledger"
	_ "github.com/syair2222/merahputih-ledger/testing"
)

func balancedRows() []AccountBalance {
	return []AccountBalance{
		{ID: "1000", Name: "Kas", Type: ledger.AccountTypeAsset, Normal: ledger.NormalDebit, Balance: 800000},
		{ID: "2000", Name: "Utang Usaha", Type: ledger.AccountTypeLiability, Normal: ledger.NormalCredit, Balance: 150000},
		{ID: "3000", Name: "Modal Koperasi", Type: ledger.AccountTypeEquity, Normal: ledger.NormalCredit, Balance: 500000},
		{ID: "4000", Name: "Pendapatan Jasa", Type: ledger.AccountTypeRevenue, Normal: ledger.NormalCredit, Balance: 250000},
		{ID: "6000", Name: "Beban Operasional", Type: ledger.AccountTypeExpense, Normal: ledger.NormalDebit, Balance: 100000},
	}
}

func TestBuildTrialBalanceColumnsAndTotals(t *testing.T) {
	tb, err := BuildTrialBalance(balancedRows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tb.Entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(tb.Entries))
	}
	if tb.TotalDebit != 900000 || tb.TotalCredit != 900000 {
		t.Fatalf("unexpected totals: %d / %d", tb.TotalDebit, tb.TotalCredit)
	}
	if tb.Entries[0].Debit != 800000 || tb.Entries[0].Credit != 0 {
		t.Fatalf("asset should sit in the debit column: %+v", tb.Entries[0])
	}
	if tb.Entries[1].Credit != 150000 || tb.Entries[1].Debit != 0 {
		t.Fatalf("liability should sit in the credit column: %+v", tb.Entries[1])
	}
}

func TestBuildTrialBalanceFlipsNegativeBalances(t *testing.T) {
	rows := []AccountBalance{
		{ID: "1000", Name: "Kas", Type: ledger.AccountTypeAsset, Normal: ledger.NormalDebit, Balance: -50000},
		{ID: "2000", Name: "Utang Usaha", Type: ledger.AccountTypeLiability, Normal: ledger.NormalCredit, Balance: -50000},
	}
	tb, err := BuildTrialBalance(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tb.Entries[0].Credit != 50000 || tb.Entries[0].Debit != 0 {
		t.Fatalf("overdrawn asset should flip to credit: %+v", tb.Entries[0])
	}
	if tb.Entries[1].Debit != 50000 || tb.Entries[1].Credit != 0 {
		t.Fatalf("negative liability should flip to debit: %+v", tb.Entries[1])
	}
}

func TestBuildTrialBalanceReportsIntegrityFault(t *testing.T) {
	rows := []AccountBalance{
		{ID: "1000", Name: "Kas", Type: ledger.AccountTypeAsset, Normal: ledger.NormalDebit, Balance: 100000},
	}
	_, err := BuildTrialBalance(rows)
	if !errors.Is(err, ledger.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
}

func TestBuildIncomeStatement(t *testing.T) {
	is := BuildIncomeStatement(balancedRows())
	if is.TotalRevenue != 250000 {
		t.Fatalf("unexpected revenue total: %d", is.TotalRevenue)
	}
	if is.TotalExpenses != 100000 {
		t.Fatalf("unexpected expense total: %d", is.TotalExpenses)
	}
	if is.NetIncome != 150000 {
		t.Fatalf("unexpected net income: %d", is.NetIncome)
	}
	if len(is.Revenues) != 1 || len(is.Expenses) != 1 {
		t.Fatalf("unexpected section sizes: %d / %d", len(is.Revenues), len(is.Expenses))
	}
}

func TestBuildBalanceSheetFoldsNetIncomeIntoEquitySide(t *testing.T) {
	rows := balancedRows()
	income := BuildIncomeStatement(rows)
	bs, err := BuildBalanceSheet(rows, income.NetIncome)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bs.TotalAssets != 800000 {
		t.Fatalf("unexpected total assets: %d", bs.TotalAssets)
	}
	if bs.TotalLiabilitiesAndEquity != 800000 {
		t.Fatalf("identity does not hold: %d", bs.TotalLiabilitiesAndEquity)
	}
	if bs.NetIncome != 150000 {
		t.Fatalf("unexpected net income carried: %d", bs.NetIncome)
	}
}

func TestBuildBalanceSheetReportsIdentityViolation(t *testing.T) {
	rows := []AccountBalance{
		{ID: "1000", Name: "Kas", Type: ledger.AccountTypeAsset, Normal: ledger.NormalDebit, Balance: 999999},
		{ID: "3000", Name: "Modal Koperasi", Type: ledger.AccountTypeEquity, Normal: ledger.NormalCredit, Balance: 500000},
	}
	_, err := BuildBalanceSheet(rows, 0)
	if !errors.Is(err, ledger.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
}
