package core

import (
	"errors"
	"testing"
	"time"
)

func limit(cents int64) *Money {
	return &Money{Cents: cents}
}

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := NewDate(2025, 3, 9).MarshalJSON()
	if err != nil || string(b) != `"2025-03-09"` {
		t.Fatalf("expected quoted date, got %s (err=%v)", b, err)
	}
	b, err = (Date{}).MarshalJSON()
	if err != nil || string(b) != "null" {
		t.Fatalf("zero date should marshal as null, got %s (err=%v)", b, err)
	}
	var d Date
	if err := d.UnmarshalJSON([]byte("null")); err != nil || !d.IsEmpty() {
		t.Fatalf("null should unmarshal to zero date (err=%v)", err)
	}
	if err := d.UnmarshalJSON([]byte(`"2025-03-09"`)); err != nil || d.Day() != 9 {
		t.Fatalf("date unmarshal failed: %v", err)
	}
}

func TestCategoryValidate(t *testing.T) {
	cases := []struct {
		name string
		c    Category
		err  error
	}{
		{"income ok", Category{Name: "Salary", Type: Income, Color: "#fff"}, nil},
		{"expense with limit", Category{Name: "Food", Type: Expense, LimitEnabled: true, MonthlyLimit: limit(50000)}, nil},
		{"empty name", Category{Name: "  ", Type: Expense}, ErrEmptyName},
		{"bad type", Category{Name: "x", Type: "transfer"}, ErrInvalidType},
		{"limit enabled without value", Category{Name: "x", Type: Expense, LimitEnabled: true}, ErrLimitRequired},
		{"limit enabled with zero value", Category{Name: "x", Type: Expense, LimitEnabled: true, MonthlyLimit: limit(0)}, ErrLimitRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate()
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestNewTransactionTypeMatchesCategory(t *testing.T) {
	food := Category{ID: "cat-1", Name: "Food", Type: Expense}

	tx, err := NewTransaction("groceries", Money{Cents: 1234}, Expense, food, NewDate(2025, 6, 1))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.ID == "" || tx.CategoryID != "cat-1" || tx.CreatedAt.IsZero() {
		t.Fatalf("constructor did not fill identity fields: %+v", tx)
	}

	if _, err := NewTransaction("salary", Money{Cents: 1234}, Income, food, NewDate(2025, 6, 1)); !errors.Is(err, ErrCategoryTypeMismatch) {
		t.Fatalf("expected ErrCategoryTypeMismatch, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Description: "ok",
		Amount:      Money{Cents: 100},
		Type:        Expense,
		CategoryID:  "cat-1",
		Date:        NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Description: "", Amount: Money{Cents: 1}, Type: Expense, CategoryID: "c", Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: Money{Cents: 0}, Type: Expense, CategoryID: "c", Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: Money{Cents: 1}, Type: "x", CategoryID: "c", Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: Money{Cents: 1}, Type: Expense, CategoryID: "", Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: Money{Cents: 1}, Type: Expense, CategoryID: "c", Date: Date{}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestGoalValidate(t *testing.T) {
	good := Goal{Title: "Vacation", TargetAmount: Money{Cents: 100000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Goal{Title: "", TargetAmount: Money{Cents: 1}}).Validate(); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if err := (Goal{Title: "x", TargetAmount: Money{Cents: 0}}).Validate(); !errors.Is(err, ErrZeroTarget) {
		t.Fatalf("expected ErrZeroTarget, got %v", err)
	}
	if err := (Goal{Title: "x", TargetAmount: Money{Cents: 1}, CurrentAmount: Money{Cents: -1}}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
