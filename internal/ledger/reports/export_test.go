package reports

import (
	"bytes"
	"strings"
	"testing"

	_ "github.com/syair2222/merahputih-ledger/testing"
)

func TestFormatAmountUsesIndonesianGrouping(t *testing.T) {
	if got := formatAmount(1500000); got != "1.500.000" {
		t.Fatalf("unexpected formatting: %q", got)
	}
	if got := formatAmount(0); got != "0" {
		t.Fatalf("unexpected formatting: %q", got)
	}
}

func TestWriteTrialBalanceCSV(t *testing.T) {
	tb := TrialBalance{
		Entries: []TrialBalanceEntry{
			{AccountID: "1000", Name: "Kas", Debit: 1500000},
			{AccountID: "3000", Name: "Modal Koperasi", Credit: 1500000},
		},
		TotalDebit:  1500000,
		TotalCredit: 1500000,
	}
	var buf bytes.Buffer
	if err := WriteTrialBalanceCSV(&buf, tb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, two rows, and totals, got %d lines", len(lines))
	}
	if lines[0] != "account_id,name,debit,credit" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[3], "TOTAL") || !strings.Contains(lines[3], "1.500.000") {
		t.Fatalf("unexpected totals row: %q", lines[3])
	}
}
