package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/memory"
	"fintrack/internal/services"
)

func newTestServer() *Server {
	return NewServer(":0", services.NewFinanceService(memory.New(), nil, 0))
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func createCategory(t *testing.T, srv *Server, body string) core.Category {
	t.Helper()
	rr := doJSON(t, srv, http.MethodPost, "/api/categories", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d: %s", rr.Code, rr.Body)
	}
	var c core.Category
	if err := json.Unmarshal(rr.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode category: %v", err)
	}
	return c
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer()
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCategoryValidationStatuses(t *testing.T) {
	srv := newTestServer()

	// Malformed JSON body.
	rr := doJSON(t, srv, http.MethodPost, "/api/categories", `{"name": `)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	// Limit enabled without a limit value.
	rr = doJSON(t, srv, http.MethodPost, "/api/categories",
		`{"name":"Food","type":"expense","limit_enabled":true}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body)
	}

	// Valid.
	c := createCategory(t, srv,
		`{"name":"Food","type":"expense","limit_enabled":true,"monthly_limit":"500.00"}`)
	if c.MonthlyLimit == nil || c.MonthlyLimit.Cents != 50000 {
		t.Fatalf("unexpected category: %+v", c)
	}
	if c.Color != core.DefaultCategoryColor {
		t.Fatalf("expected default color, got %s", c.Color)
	}
}

func TestTransactionLifecycleWithAlert(t *testing.T) {
	srv := newTestServer()
	c := createCategory(t, srv,
		`{"name":"Food","type":"expense","limit_enabled":true,"monthly_limit":"500.00"}`)

	// Unknown category is a validation failure.
	rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"orphan","amount":"10.00","type":"expense","category_id":"missing","date":"2025-06-03"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown category, got %d", rr.Code)
	}

	body := fmt.Sprintf(`{"description":"groceries","amount":"450.00","type":"expense","category_id":"%s","date":"2025-06-03"}`, c.ID)
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body)
	}
	var tx core.Transaction
	_ = json.Unmarshal(rr.Body.Bytes(), &tx)
	if tx.Amount.Cents != 45000 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	// 450 of 500 crossed the warning threshold.
	rr = doJSON(t, srv, http.MethodGet, "/api/alerts", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list alerts: %d", rr.Code)
	}
	var alerts []core.Alert
	_ = json.Unmarshal(rr.Body.Bytes(), &alerts)
	if len(alerts) != 1 || alerts[0].Percentage != 90 {
		t.Fatalf("expected one 90%% alert, got %+v", alerts)
	}

	// Mark it read; unknown ids are 404.
	rr = doJSON(t, srv, http.MethodPut, "/api/alerts/"+alerts[0].ID+"/read", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("mark read: %d: %s", rr.Code, rr.Body)
	}
	var read core.Alert
	_ = json.Unmarshal(rr.Body.Bytes(), &read)
	if !read.IsRead {
		t.Fatal("alert must be read after acknowledgement")
	}
	rr = doJSON(t, srv, http.MethodPut, "/api/alerts/nope/read", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	// Delete the transaction; the alert record stays.
	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+tx.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/alerts", "")
	alerts = nil
	_ = json.Unmarshal(rr.Body.Bytes(), &alerts)
	if len(alerts) != 1 {
		t.Fatalf("alert must survive transaction deletion, got %d", len(alerts))
	}
}

func TestGoalEndpoints(t *testing.T) {
	srv := newTestServer()

	rr := doJSON(t, srv, http.MethodPost, "/api/goals",
		`{"title":"Emergency fund","target_amount":"1000.00","current_amount":"800.00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create goal: %d: %s", rr.Code, rr.Body)
	}

	// Zero target is a validation failure.
	rr = doJSON(t, srv, http.MethodPost, "/api/goals",
		`{"title":"Broken","target_amount":"0.00"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/goals", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list goals: %d", rr.Code)
	}
	var goals []struct {
		core.Goal
		Progress core.GoalProgress `json:"progress"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &goals); err != nil {
		t.Fatalf("decode goals: %v", err)
	}
	if len(goals) != 1 || goals[0].Progress.Status != core.StatusNearCompletion {
		t.Fatalf("unexpected goals: %+v", goals)
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/goals/missing",
		`{"title":"x","target_amount":"1.00"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestDashboardSummaryShape(t *testing.T) {
	srv := newTestServer()
	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard: %d", rr.Code)
	}
	body := rr.Body.String()
	for _, key := range []string{
		"total_balance", "total_income", "total_expenses",
		"monthly_balance", "monthly_income", "monthly_expenses",
		"category_spending", "recent_transactions",
	} {
		if !strings.Contains(body, `"`+key+`"`) {
			t.Fatalf("summary missing %q: %s", key, body)
		}
	}
}

func TestExportEndpoints(t *testing.T) {
	srv := newTestServer()

	rr := doJSON(t, srv, http.MethodGet, "/api/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export: %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if !strings.Contains(rr.Body.String(), `"total_categories": 0`) {
		t.Fatalf("empty export must carry zero counts: %s", rr.Body)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/export/csv/transactions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("csv export: %d", rr.Code)
	}
	if got := rr.Body.String(); got != "id,description,amount,type,category_id,date,created_at\n" {
		t.Fatalf("empty store must export a header-only document, got %q", got)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/export/csv/alerts", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown entity must 404, got %d", rr.Code)
	}
}
