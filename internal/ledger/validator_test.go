package ledger

import (
	"errors"
	"testing"

	_ "github.com/syair2222/merahputih-ledger/testing"
)

func testAccounts() AccountSet {
	return AccountSet{
		"1000": {ID: "1000", Name: "Kas", Type: AccountTypeAsset, Normal: NormalDebit, IsActive: true},
		"2000": {ID: "2000", Name: "Utang Usaha", Type: AccountTypeLiability, Normal: NormalCredit, IsActive: true},
		"4000": {ID: "4000", Name: "Pendapatan Jasa", Type: AccountTypeRevenue, Normal: NormalCredit, IsActive: true},
		"6000": {ID: "6000", Name: "Beban Operasional", Type: AccountTypeExpense, Normal: NormalDebit, IsActive: true},
		"9000": {ID: "9000", Name: "Akun Lama", Type: AccountTypeAsset, Normal: NormalDebit, IsActive: false},
	}
}

func TestBuildPlanRejectsSingleLine(t *testing.T) {
	_, err := BuildPlan([]DraftLine{{AccountID: "1000", Debit: 100}}, testAccounts())
	if !errors.Is(err, ErrTooFewLines) {
		t.Fatalf("expected ErrTooFewLines, got %v", err)
	}
}

func TestBuildPlanRejectsNegativeAmount(t *testing.T) {
	lines := []DraftLine{
		{AccountID: "1000", Debit: -100},
		{AccountID: "4000", Credit: -100},
	}
	_, err := BuildPlan(lines, testAccounts())
	if !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestBuildPlanRejectsBothSidesSet(t *testing.T) {
	lines := []DraftLine{
		{AccountID: "1000", Debit: 100, Credit: 100},
		{AccountID: "4000", Credit: 100},
	}
	_, err := BuildPlan(lines, testAccounts())
	if !errors.Is(err, ErrLineSides) {
		t.Fatalf("expected ErrLineSides, got %v", err)
	}
}

func TestBuildPlanRejectsEmptyLine(t *testing.T) {
	lines := []DraftLine{
		{AccountID: "1000"},
		{AccountID: "4000", Credit: 100},
	}
	_, err := BuildPlan(lines, testAccounts())
	if !errors.Is(err, ErrLineSides) {
		t.Fatalf("expected ErrLineSides, got %v", err)
	}
}

func TestBuildPlanRejectsUnknownAccount(t *testing.T) {
	lines := []DraftLine{
		{AccountID: "1000", Debit: 100},
		{AccountID: "5555", Credit: 100},
	}
	_, err := BuildPlan(lines, testAccounts())
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestBuildPlanRejectsInactiveAccount(t *testing.T) {
	lines := []DraftLine{
		{AccountID: "9000", Debit: 100},
		{AccountID: "4000", Credit: 100},
	}
	_, err := BuildPlan(lines, testAccounts())
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestBuildPlanRejectsOffByOneImbalance(t *testing.T) {
	lines := []DraftLine{
		{AccountID: "1000", Debit: 500000},
		{AccountID: "4000", Credit: 499999},
	}
	_, err := BuildPlan(lines, testAccounts())
	if !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced, got %v", err)
	}
}

func TestBuildPlanComputesSortedDeltas(t *testing.T) {
	lines := []DraftLine{
		{AccountID: "6000", Debit: 30000},
		{AccountID: "1000", Debit: 70000},
		{AccountID: "4000", Credit: 90000},
		{AccountID: "1000", Credit: 10000},
	}
	plan, err := BuildPlan(lines, testAccounts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.TotalDebit != 100000 || plan.TotalCredit != 100000 {
		t.Fatalf("unexpected totals: %d / %d", plan.TotalDebit, plan.TotalCredit)
	}
	want := []AccountDelta{
		{AccountID: "1000", Delta: 60000},
		{AccountID: "4000", Delta: 90000},
		{AccountID: "6000", Delta: 30000},
	}
	if len(plan.Deltas) != len(want) {
		t.Fatalf("expected %d deltas, got %d", len(want), len(plan.Deltas))
	}
	for i, delta := range plan.Deltas {
		if delta != want[i] {
			t.Fatalf("delta %d: expected %+v got %+v", i, want[i], delta)
		}
	}
}

func TestSignedDeltaOrientation(t *testing.T) {
	if got := SignedDelta(NormalDebit, 100, 30); got != 70 {
		t.Fatalf("debit-normal: expected 70, got %d", got)
	}
	if got := SignedDelta(NormalCredit, 30, 100); got != 70 {
		t.Fatalf("credit-normal: expected 70, got %d", got)
	}
	if got := SignedDelta(NormalCredit, 100, 30); got != -70 {
		t.Fatalf("credit-normal reversed: expected -70, got %d", got)
	}
}
