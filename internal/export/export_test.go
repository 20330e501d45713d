package export

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

var testCreated = time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

func fixtureSnapshot() Export {
	limit := core.Money{Cents: 50000}
	categories := []core.Category{
		{ID: "c1", Name: "Food", Type: core.Expense, Color: "#EF4444", LimitEnabled: true, MonthlyLimit: &limit, CreatedAt: testCreated},
		{ID: "c2", Name: "Salary", Type: core.Income, Color: "#10B981", CreatedAt: testCreated},
	}
	transactions := []core.Transaction{
		{ID: "t1", Description: "Groceries, \"weekly\" run", Amount: core.Money{Cents: 4550}, Type: core.Expense, CategoryID: "c1", Date: core.NewDate(2025, 6, 3), CreatedAt: testCreated},
		{ID: "t2", Description: "June pay", Amount: core.Money{Cents: 250000}, Type: core.Income, CategoryID: "c2", Date: core.NewDate(2025, 6, 1), CreatedAt: testCreated},
	}
	goals := []core.Goal{
		{ID: "g1", Title: "Emergency fund", Description: "Three months of expenses", TargetAmount: core.Money{Cents: 300000}, CurrentAmount: core.Money{Cents: 120000}, TargetDate: core.NewDate(2025, 12, 31), CreatedAt: testCreated},
		{ID: "g2", Title: "Open ended", TargetAmount: core.Money{Cents: 100000}, CreatedAt: testCreated},
	}
	alerts := []core.Alert{
		{ID: "a1", CategoryID: "c1", Period: "2025-06", Message: "Warning! You spent 91.0% of the limit for category Food", AmountSpent: core.Money{Cents: 45500}, LimitAmount: limit, Percentage: 91, Date: core.NewDate(2025, 6, 3), CreatedAt: testCreated},
	}
	return Snapshot(categories, transactions, goals, alerts)
}

func TestSnapshotCounts(t *testing.T) {
	e := fixtureSnapshot()
	want := Summary{TotalCategories: 2, TotalTransactions: 2, TotalGoals: 2, TotalAlerts: 1}
	if e.Summary != want {
		t.Fatalf("expected %+v, got %+v", want, e.Summary)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	e := fixtureSnapshot()
	doc, err := e.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := DecodeJSON(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, e) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", e, got)
	}
}

func TestJSONExplicitNulls(t *testing.T) {
	e := fixtureSnapshot()
	doc, err := e.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(doc)
	if !strings.Contains(s, `"monthly_limit": null`) {
		t.Fatalf("category without limit must serialize monthly_limit as null:\n%s", s)
	}
	if !strings.Contains(s, `"target_date": null`) {
		t.Fatalf("goal without deadline must serialize target_date as null:\n%s", s)
	}
	if !strings.Contains(s, `"amount": "45.50"`) {
		t.Fatalf("amounts must serialize as decimal strings:\n%s", s)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	e := fixtureSnapshot()
	docs, err := e.CSV()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txns, err := ParseTransactionsCSV(docs.Transactions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(txns, e.Data.Transactions) {
		t.Fatalf("transactions mismatch:\nwant %+v\ngot  %+v", e.Data.Transactions, txns)
	}

	cats, err := ParseCategoriesCSV(docs.Categories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cats, e.Data.Categories) {
		t.Fatalf("categories mismatch:\nwant %+v\ngot  %+v", e.Data.Categories, cats)
	}

	goals, err := ParseGoalsCSV(docs.Goals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(goals, e.Data.Goals) {
		t.Fatalf("goals mismatch:\nwant %+v\ngot  %+v", e.Data.Goals, goals)
	}
}

func TestCSVQuoting(t *testing.T) {
	e := fixtureSnapshot()
	doc, err := e.TransactionsCSV()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(doc), `"Groceries, ""weekly"" run"`) {
		t.Fatalf("description with comma and quotes must be escaped:\n%s", doc)
	}
}

func TestEmptySnapshot(t *testing.T) {
	e := Snapshot(nil, nil, nil, nil)
	if e.Summary != (Summary{}) {
		t.Fatalf("expected zero counts, got %+v", e.Summary)
	}

	doc, err := e.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(doc), `"categories": null`) {
		t.Fatalf("empty collections must serialize as [], not null:\n%s", doc)
	}

	docs, err := e.CSV()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		name   string
		doc    []byte
		header string
	}{
		{"transactions", docs.Transactions, "id,description,amount,type,category_id,date,created_at\n"},
		{"categories", docs.Categories, "id,name,type,limit_enabled,monthly_limit,color,created_at\n"},
		{"goals", docs.Goals, "id,title,description,target_amount,current_amount,target_date,created_at\n"},
	}
	for _, tc := range cases {
		if string(tc.doc) != tc.header {
			t.Fatalf("%s: expected header-only document, got %q", tc.name, tc.doc)
		}
	}
}

func TestParseCSVRejectsBadHeader(t *testing.T) {
	if _, err := ParseTransactionsCSV([]byte("foo,bar\n")); err == nil {
		t.Fatal("expected error for wrong header")
	}
	if _, err := ParseTransactionsCSV(nil); err == nil {
		t.Fatal("expected error for empty document")
	}
}
