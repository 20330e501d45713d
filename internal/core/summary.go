package core

import (
	"sort"
	"time"
)

// CategorySpend is one row of the current-month expense rollup.
type CategorySpend struct {
	CategoryID string `json:"category_id"`
	Category   string `json:"category"`
	Amount     Money  `json:"amount"`
	Color      string `json:"color"`
}

// ResolvedTransaction pairs a transaction with its category lookup result.
// Unresolved marks a dangling reference (the category was deleted); callers
// decide how to label those for display.
type ResolvedTransaction struct {
	Transaction
	CategoryName string `json:"category_name"`
	Unresolved   bool   `json:"-"`
}

// DashboardSummary is a pure derived value; nothing in it is persisted.
type DashboardSummary struct {
	TotalBalance    Money `json:"total_balance"`
	TotalIncome     Money `json:"total_income"`
	TotalExpenses   Money `json:"total_expenses"`
	MonthlyBalance  Money `json:"monthly_balance"`
	MonthlyIncome   Money `json:"monthly_income"`
	MonthlyExpenses Money `json:"monthly_expenses"`

	// CategorySpending carries one entry per expense category with non-zero
	// spend in the current month, in no particular order. Sorting and top-N
	// truncation are presentation concerns.
	CategorySpending []CategorySpend `json:"category_spending"`

	// RecentTransactions is the full transaction set ordered by date
	// descending, ties broken by creation time descending. Callers truncate
	// for display.
	RecentTransactions []ResolvedTransaction `json:"recent_transactions"`
}

// ComputeDashboardSummary derives the dashboard rollups from a snapshot of
// categories and transactions. "Monthly" figures cover the calendar month
// containing now. Transactions whose category no longer exists still count
// toward the income/expense totals but are excluded from the per-category
// rollup.
func ComputeDashboardSummary(categories []Category, transactions []Transaction, now time.Time) DashboardSummary {
	byID := make(map[string]Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	var s DashboardSummary
	spend := make(map[string]Money)
	for _, t := range transactions {
		switch t.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			if t.Date.SameMonth(now) {
				s.MonthlyIncome = s.MonthlyIncome.Add(t.Amount)
			}
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
			if t.Date.SameMonth(now) {
				s.MonthlyExpenses = s.MonthlyExpenses.Add(t.Amount)
				if _, ok := byID[t.CategoryID]; ok {
					spend[t.CategoryID] = spend[t.CategoryID].Add(t.Amount)
				}
			}
		}
	}
	s.TotalBalance = s.TotalIncome.Sub(s.TotalExpenses)
	s.MonthlyBalance = s.MonthlyIncome.Sub(s.MonthlyExpenses)

	s.CategorySpending = make([]CategorySpend, 0, len(spend))
	for id, amount := range spend {
		c := byID[id]
		s.CategorySpending = append(s.CategorySpending, CategorySpend{
			CategoryID: id,
			Category:   c.Name,
			Amount:     amount,
			Color:      c.Color,
		})
	}

	s.RecentTransactions = resolveAndOrder(transactions, byID)
	return s
}

// MonthlyCategorySpend sums the expense transactions of one category within
// the calendar month containing now. Shared by the dashboard rollup and the
// alert generator.
func MonthlyCategorySpend(transactions []Transaction, categoryID string, now time.Time) Money {
	var total Money
	for _, t := range transactions {
		if t.Type == Expense && t.CategoryID == categoryID && t.Date.SameMonth(now) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func resolveAndOrder(transactions []Transaction, byID map[string]Category) []ResolvedTransaction {
	out := make([]ResolvedTransaction, 0, len(transactions))
	for _, t := range transactions {
		rt := ResolvedTransaction{Transaction: t}
		if c, ok := byID[t.CategoryID]; ok {
			rt.CategoryName = c.Name
		} else {
			rt.Unresolved = true
		}
		out = append(out, rt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
