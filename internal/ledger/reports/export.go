package reports

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// amounts stay in minor units; the printer adds Indonesian digit grouping.
var printer = message.NewPrinter(language.Indonesian)

func formatAmount(minor int64) string {
	return printer.Sprintf("%d", minor)
}

// WriteTrialBalanceCSV renders the trial balance as CSV.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"account_id", "name", "debit", "credit"}); err != nil {
		return err
	}
	for _, entry := range tb.Entries {
		if err := cw.Write([]string{entry.AccountID, entry.Name, formatAmount(entry.Debit), formatAmount(entry.Credit)}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"", "TOTAL", formatAmount(tb.TotalDebit), formatAmount(tb.TotalCredit)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteIncomeStatementCSV renders the income statement as CSV.
func WriteIncomeStatementCSV(w io.Writer, is IncomeStatement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "account_id", "name", "amount"}); err != nil {
		return err
	}
	for _, line := range is.Revenues {
		if err := cw.Write([]string{"revenue", line.AccountID, line.Name, formatAmount(line.Amount)}); err != nil {
			return err
		}
	}
	for _, line := range is.Expenses {
		if err := cw.Write([]string{"expense", line.AccountID, line.Name, formatAmount(line.Amount)}); err != nil {
			return err
		}
	}
	rows := [][]string{
		{"total", "", "Total Pendapatan", formatAmount(is.TotalRevenue)},
		{"total", "", "Total Beban", formatAmount(is.TotalExpenses)},
		{"total", "", "Laba Bersih", formatAmount(is.NetIncome)},
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBalanceSheetCSV renders the balance sheet as CSV.
func WriteBalanceSheetCSV(w io.Writer, bs BalanceSheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "account_id", "name", "amount"}); err != nil {
		return err
	}
	sections := []struct {
		label string
		lines []StatementLine
	}{
		{"asset", bs.Assets},
		{"liability", bs.Liabilities},
		{"equity", bs.Equity},
	}
	for _, section := range sections {
		for _, line := range section.lines {
			if err := cw.Write([]string{section.label, line.AccountID, line.Name, formatAmount(line.Amount)}); err != nil {
				return err
			}
		}
	}
	rows := [][]string{
		{"equity", "", "Hasil Periode Berjalan", formatAmount(bs.NetIncome)},
		{"total", "", "Total Aset", formatAmount(bs.TotalAssets)},
		{"total", "", "Total Kewajiban dan Ekuitas", formatAmount(bs.TotalLiabilitiesAndEquity)},
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
