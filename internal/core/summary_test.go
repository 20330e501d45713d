package core

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func tx(id string, typ TransactionType, cents int64, catID string, date Date, createdAt time.Time) Transaction {
	return Transaction{
		ID:          id,
		Description: id,
		Amount:      Money{Cents: cents},
		Type:        typ,
		CategoryID:  catID,
		Date:        date,
		CreatedAt:   createdAt,
	}
}

func TestComputeDashboardSummaryTotals(t *testing.T) {
	cats := []Category{
		{ID: "food", Name: "Food", Type: Expense, Color: "#f00"},
		{ID: "salary", Name: "Salary", Type: Income, Color: "#0f0"},
	}
	txns := []Transaction{
		tx("t1", Income, 300000, "salary", NewDate(2025, 6, 1), testNow),
		tx("t2", Expense, 45000, "food", NewDate(2025, 6, 5), testNow),
		tx("t3", Expense, 20000, "food", NewDate(2025, 5, 30), testNow), // previous month
		tx("t4", Income, 10000, "salary", NewDate(2024, 6, 15), testNow),
	}

	s := ComputeDashboardSummary(cats, txns, testNow)

	if s.TotalIncome.Cents != 310000 || s.TotalExpenses.Cents != 65000 {
		t.Fatalf("totals wrong: income=%d expenses=%d", s.TotalIncome.Cents, s.TotalExpenses.Cents)
	}
	if s.TotalBalance != s.TotalIncome.Sub(s.TotalExpenses) {
		t.Fatalf("balance identity broken: %d", s.TotalBalance.Cents)
	}
	if s.MonthlyIncome.Cents != 300000 || s.MonthlyExpenses.Cents != 45000 {
		t.Fatalf("monthly figures wrong: income=%d expenses=%d", s.MonthlyIncome.Cents, s.MonthlyExpenses.Cents)
	}
	if s.MonthlyBalance.Cents != 255000 {
		t.Fatalf("monthly balance wrong: %d", s.MonthlyBalance.Cents)
	}
}

func TestMonthBoundaryFiltering(t *testing.T) {
	cats := []Category{{ID: "food", Name: "Food", Type: Expense}}
	// Created recently but dated in another month: must not count as monthly.
	old := tx("old", Expense, 100, "food", NewDate(2025, 5, 31), testNow)
	first := tx("first", Expense, 200, "food", NewDate(2025, 6, 1), testNow.AddDate(-1, 0, 0))
	last := tx("last", Expense, 300, "food", NewDate(2025, 6, 30), testNow)

	s := ComputeDashboardSummary(cats, []Transaction{old, first, last}, testNow)
	if s.MonthlyExpenses.Cents != 500 {
		t.Fatalf("expected first+last day of month only, got %d", s.MonthlyExpenses.Cents)
	}
}

func TestCategorySpendingOmitsZeroAndDangling(t *testing.T) {
	cats := []Category{
		{ID: "food", Name: "Food", Type: Expense, Color: "#f00"},
		{ID: "rent", Name: "Rent", Type: Expense, Color: "#00f"},
	}
	txns := []Transaction{
		tx("t1", Expense, 45000, "food", NewDate(2025, 6, 5), testNow),
		tx("t2", Expense, 9999, "deleted-cat", NewDate(2025, 6, 6), testNow), // dangling
	}

	s := ComputeDashboardSummary(cats, txns, testNow)

	if len(s.CategorySpending) != 1 {
		t.Fatalf("expected a single spending row, got %d", len(s.CategorySpending))
	}
	row := s.CategorySpending[0]
	if row.CategoryID != "food" || row.Amount.Cents != 45000 || row.Color != "#f00" {
		t.Fatalf("unexpected row: %+v", row)
	}
	// Dangling transactions still count toward totals.
	if s.TotalExpenses.Cents != 54999 {
		t.Fatalf("dangling transaction missing from totals: %d", s.TotalExpenses.Cents)
	}
	// And they are tagged unresolved in the ordered sequence.
	var sawUnresolved bool
	for _, rt := range s.RecentTransactions {
		if rt.ID == "t2" {
			sawUnresolved = rt.Unresolved && rt.CategoryName == ""
		}
	}
	if !sawUnresolved {
		t.Fatalf("expected t2 to be tagged unresolved")
	}
}

func TestRecentTransactionsOrdering(t *testing.T) {
	cats := []Category{{ID: "food", Name: "Food", Type: Expense}}
	created := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	txns := []Transaction{
		tx("a", Expense, 100, "food", NewDate(2025, 6, 1), created),
		tx("b", Expense, 100, "food", NewDate(2025, 6, 10), created),
		tx("c", Expense, 100, "food", NewDate(2025, 6, 10), created.Add(time.Hour)), // same date, newer
		tx("d", Expense, 100, "food", NewDate(2025, 6, 12), created),
	}

	s := ComputeDashboardSummary(cats, txns, testNow)
	got := make([]string, 0, len(s.RecentTransactions))
	for _, rt := range s.RecentTransactions {
		got = append(got, rt.ID)
	}
	want := []string{"d", "c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordering wrong: got %v, want %v", got, want)
		}
	}
}

func TestMonthlyCategorySpend(t *testing.T) {
	txns := []Transaction{
		tx("t1", Expense, 20000, "food", NewDate(2025, 6, 5), testNow),
		tx("t2", Expense, 25000, "food", NewDate(2025, 6, 10), testNow),
		tx("t3", Expense, 5000, "food", NewDate(2025, 5, 10), testNow), // other month
		tx("t4", Expense, 7000, "rent", NewDate(2025, 6, 10), testNow), // other category
		tx("t5", Income, 7000, "food", NewDate(2025, 6, 10), testNow),  // not an expense
	}
	if got := MonthlyCategorySpend(txns, "food", testNow); got.Cents != 45000 {
		t.Fatalf("expected 45000, got %d", got.Cents)
	}
	if got := MonthlyCategorySpend(nil, "food", testNow); got.Cents != 0 {
		t.Fatalf("empty set should be zero, got %d", got.Cents)
	}
}
