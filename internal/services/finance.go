// Package services orchestrates the entity store, the aggregation and alert
// engines and the event pipeline behind the HTTP handlers.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/export"
)

// ErrValidation marks input that failed a domain invariant. Handlers map it
// to an unprocessable-entity response.
var ErrValidation = errors.New("validation failed")

func validationErr(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

type CategoryInput struct {
	Name         string
	Type         core.TransactionType
	Color        string
	LimitEnabled bool
	MonthlyLimit *core.Money
}

type TransactionInput struct {
	Description string
	Amount      core.Money
	Type        core.TransactionType
	CategoryID  string
	Date        core.Date
}

type GoalInput struct {
	Title         string
	Description   string
	TargetAmount  core.Money
	CurrentAmount core.Money
	TargetDate    core.Date
}

// GoalWithProgress pairs a stored goal with its derived progress.
type GoalWithProgress struct {
	core.Goal
	Progress core.GoalProgress `json:"progress"`
}

// FinanceService coordinates storage, alert evaluation and event publishing.
// Mutations that change a month's expense picture re-run alert evaluation for
// that month; publish failures never fail the request.
type FinanceService struct {
	store     Store
	publisher AlertPublisher
	threshold float64
}

func NewFinanceService(store Store, publisher AlertPublisher, warningThreshold float64) *FinanceService {
	if warningThreshold <= 0 {
		warningThreshold = core.DefaultWarningThreshold
	}
	return &FinanceService{
		store:     store,
		publisher: publisher,
		threshold: warningThreshold,
	}
}

// ---- categories ----

func (s *FinanceService) CreateCategory(ctx context.Context, in CategoryInput) (core.Category, error) {
	c, err := core.NewCategory(in.Name, in.Type, in.Color, in.LimitEnabled, in.MonthlyLimit)
	if err != nil {
		return core.Category{}, validationErr(err)
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	s.refreshAlerts(ctx, time.Now())
	return c, nil
}

func (s *FinanceService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *FinanceService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (core.Category, error) {
	stored, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	updated := core.Category{
		ID:           stored.ID,
		Name:         in.Name,
		Type:         in.Type,
		Color:        in.Color,
		LimitEnabled: in.LimitEnabled,
		MonthlyLimit: in.MonthlyLimit,
		CreatedAt:    stored.CreatedAt,
	}
	if updated.Color == "" {
		updated.Color = stored.Color
	}
	if err := updated.Validate(); err != nil {
		return core.Category{}, validationErr(err)
	}
	if err := s.store.UpdateCategory(ctx, updated); err != nil {
		return core.Category{}, err
	}
	// A limit change can make the current month's spend newly alert-worthy.
	s.refreshAlerts(ctx, time.Now())
	return updated, nil
}

func (s *FinanceService) DeleteCategory(ctx context.Context, id string) error {
	return s.store.DeleteCategory(ctx, id)
}

// ---- transactions ----

func (s *FinanceService) CreateTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	category, err := s.store.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return core.Transaction{}, validationErr(fmt.Errorf("category %s: %w", in.CategoryID, core.ErrEmptyCategory))
	}
	t, err := core.NewTransaction(in.Description, in.Amount, in.Type, category, in.Date)
	if err != nil {
		return core.Transaction{}, validationErr(err)
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	s.refreshAlerts(ctx, t.Date.Time)
	return t, nil
}

func (s *FinanceService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, id string, in TransactionInput) (core.Transaction, error) {
	stored, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	category, err := s.store.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return core.Transaction{}, validationErr(fmt.Errorf("category %s: %w", in.CategoryID, core.ErrEmptyCategory))
	}
	if in.Type != category.Type {
		return core.Transaction{}, validationErr(core.ErrCategoryTypeMismatch)
	}
	updated := core.Transaction{
		ID:          stored.ID,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		CategoryID:  in.CategoryID,
		Date:        in.Date,
		CreatedAt:   stored.CreatedAt,
	}
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, validationErr(err)
	}
	if err := s.store.UpdateTransaction(ctx, updated); err != nil {
		return core.Transaction{}, err
	}
	// Both the old and the new month may be affected by the move.
	s.refreshAlerts(ctx, stored.Date.Time)
	if !updated.Date.SameMonth(stored.Date.Time) {
		s.refreshAlerts(ctx, updated.Date.Time)
	}
	return updated, nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, id string) error {
	stored, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.refreshAlerts(ctx, stored.Date.Time)
	return nil
}

// ---- goals ----

func (s *FinanceService) CreateGoal(ctx context.Context, in GoalInput) (core.Goal, error) {
	g, err := core.NewGoal(in.Title, in.Description, in.TargetAmount, in.TargetDate)
	if err != nil {
		return core.Goal{}, validationErr(err)
	}
	g.CurrentAmount = in.CurrentAmount
	if err := g.Validate(); err != nil {
		return core.Goal{}, validationErr(err)
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// ListGoals returns all goals with progress derived against today.
func (s *FinanceService) ListGoals(ctx context.Context, today time.Time) ([]GoalWithProgress, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GoalWithProgress, 0, len(goals))
	for _, g := range goals {
		progress, err := core.EvaluateGoal(g, today)
		if err != nil {
			return nil, fmt.Errorf("evaluate goal %s: %w", g.ID, err)
		}
		out = append(out, GoalWithProgress{Goal: g, Progress: progress})
	}
	return out, nil
}

func (s *FinanceService) UpdateGoal(ctx context.Context, id string, in GoalInput) (core.Goal, error) {
	stored, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, err
	}
	updated := core.Goal{
		ID:            stored.ID,
		Title:         in.Title,
		Description:   in.Description,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		TargetDate:    in.TargetDate,
		CreatedAt:     stored.CreatedAt,
	}
	if err := updated.Validate(); err != nil {
		return core.Goal{}, validationErr(err)
	}
	if err := s.store.UpdateGoal(ctx, updated); err != nil {
		return core.Goal{}, err
	}
	return updated, nil
}

func (s *FinanceService) DeleteGoal(ctx context.Context, id string) error {
	return s.store.DeleteGoal(ctx, id)
}

// ---- alerts ----

func (s *FinanceService) ListAlerts(ctx context.Context) ([]core.Alert, error) {
	return s.store.ListAlerts(ctx)
}

func (s *FinanceService) MarkAlertRead(ctx context.Context, id string) (core.Alert, error) {
	return s.store.MarkAlertRead(ctx, id)
}

// refreshAlerts re-runs alert evaluation for the month containing at, persists
// the changed alerts and publishes events for new or re-opened ones. Failures
// here never fail the triggering request.
func (s *FinanceService) refreshAlerts(ctx context.Context, at time.Time) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Alert refresh: list categories failed", "error", err)
		return
	}
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Alert refresh: list transactions failed", "error", err)
		return
	}
	existing, err := s.store.ListAlerts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Alert refresh: list alerts failed", "error", err)
		return
	}

	prev := make(map[string]core.Alert, len(existing))
	for _, a := range existing {
		prev[a.ID] = a
	}

	changed := core.EvaluateAlertsWithThreshold(categories, transactions, existing, at, s.threshold)
	for _, a := range changed {
		if err := s.store.UpsertAlert(ctx, a); err != nil {
			slog.ErrorContext(ctx, "Alert refresh: upsert failed",
				"category_id", a.CategoryID, "period", a.Period, "error", err)
			continue
		}
		before, existed := prev[a.ID]
		if !existed || (before.IsRead && !a.IsRead) {
			s.publishAlertEvent(ctx, a)
		}
	}
}

func (s *FinanceService) publishAlertEvent(ctx context.Context, a core.Alert) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping alert event")
		return
	}
	if err := s.publisher.PublishAlertEvent(ctx, a.ID, a.CategoryID, a.Period, a.Percentage); err != nil {
		slog.ErrorContext(ctx, "Failed to publish alert event",
			"alert_id", a.ID, "error", err)
	}
}

// ---- dashboard and export ----

func (s *FinanceService) DashboardSummary(ctx context.Context, now time.Time) (core.DashboardSummary, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	return core.ComputeDashboardSummary(categories, transactions, now), nil
}

// ExportSnapshot assembles the full-store export document.
func (s *FinanceService) ExportSnapshot(ctx context.Context) (export.Export, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return export.Export{}, err
	}
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return export.Export{}, err
	}
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return export.Export{}, err
	}
	alerts, err := s.store.ListAlerts(ctx)
	if err != nil {
		return export.Export{}, err
	}
	return export.Snapshot(categories, transactions, goals, alerts), nil
}

// Close releases the store and the publisher.
func (s *FinanceService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close finance service: %v", errs)
	}

	return nil
}
