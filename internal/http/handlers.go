package http

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// Payload amounts are decimal strings ("450.00"); dates are "2006-01-02".
// The Money and Date types accept both on decode.

type categoryPayload struct {
	Name         string               `json:"name"`
	Type         core.TransactionType `json:"type"`
	Color        string               `json:"color"`
	LimitEnabled bool                 `json:"limit_enabled"`
	MonthlyLimit *core.Money          `json:"monthly_limit"`
}

type transactionPayload struct {
	Description string               `json:"description"`
	Amount      core.Money           `json:"amount"`
	Type        core.TransactionType `json:"type"`
	CategoryID  string               `json:"category_id"`
	Date        core.Date            `json:"date"`
}

type goalPayload struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TargetAmount  core.Money `json:"target_amount"`
	CurrentAmount core.Money `json:"current_amount"`
	TargetDate    core.Date  `json:"target_date"`
}

// ---- categories ----

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.service.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var p categoryPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.service.CreateCategory(r.Context(), services.CategoryInput{
		Name:         p.Name,
		Type:         p.Type,
		Color:        p.Color,
		LimitEnabled: p.LimitEnabled,
		MonthlyLimit: p.MonthlyLimit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var p categoryPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.service.UpdateCategory(r.Context(), r.PathValue("id"), services.CategoryInput{
		Name:         p.Name,
		Type:         p.Type,
		Color:        p.Color,
		LimitEnabled: p.LimitEnabled,
		MonthlyLimit: p.MonthlyLimit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- transactions ----

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.service.ListTransactions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var p transactionPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.service.CreateTransaction(r.Context(), services.TransactionInput{
		Description: p.Description,
		Amount:      p.Amount,
		Type:        p.Type,
		CategoryID:  p.CategoryID,
		Date:        p.Date,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var p transactionPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.service.UpdateTransaction(r.Context(), r.PathValue("id"), services.TransactionInput{
		Description: p.Description,
		Amount:      p.Amount,
		Type:        p.Type,
		CategoryID:  p.CategoryID,
		Date:        p.Date,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- goals ----

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.service.ListGoals(r.Context(), time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if goals == nil {
		goals = []services.GoalWithProgress{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var p goalPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.service.CreateGoal(r.Context(), services.GoalInput{
		Title:         p.Title,
		Description:   p.Description,
		TargetAmount:  p.TargetAmount,
		CurrentAmount: p.CurrentAmount,
		TargetDate:    p.TargetDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var p goalPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.service.UpdateGoal(r.Context(), r.PathValue("id"), services.GoalInput{
		Title:         p.Title,
		Description:   p.Description,
		TargetAmount:  p.TargetAmount,
		CurrentAmount: p.CurrentAmount,
		TargetDate:    p.TargetDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- alerts ----

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.service.ListAlerts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if alerts == nil {
		alerts = []core.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	a, err := s.service.MarkAlertRead(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ---- dashboard ----

const recentTransactionsLimit = 10

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.DashboardSummary(r.Context(), time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Presentation ordering: spending descending by amount, recent
	// transactions capped for display.
	sort.SliceStable(summary.CategorySpending, func(i, j int) bool {
		return summary.CategorySpending[i].Amount.Cents > summary.CategorySpending[j].Amount.Cents
	})
	if len(summary.RecentTransactions) > recentTransactionsLimit {
		summary.RecentTransactions = summary.RecentTransactions[:recentTransactionsLimit]
	}
	for i := range summary.RecentTransactions {
		if summary.RecentTransactions[i].Unresolved {
			summary.RecentTransactions[i].CategoryName = "Unknown category"
		}
	}

	writeJSON(w, http.StatusOK, summary)
}

// ---- export ----

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.ExportSnapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	doc, err := snap.JSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="fintrack-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.ExportSnapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entity := r.PathValue("entity")
	var doc []byte
	switch entity {
	case "transactions":
		doc, err = snap.TransactionsCSV()
	case "categories":
		doc, err = snap.CategoriesCSV()
	case "goals":
		doc, err = snap.GoalsCSV()
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown export entity %q", entity))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="fintrack-%s.csv"`, entity))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
