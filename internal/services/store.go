package services

import (
	"context"

	"fintrack/internal/core"
)

// Store is the entity store the service orchestrates. Both the SQLite
// repository and the in-memory store implement it.
type Store interface {
	CreateCategory(ctx context.Context, c core.Category) error
	GetCategory(ctx context.Context, id string) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateTransaction(ctx context.Context, t core.Transaction) error
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	CreateGoal(ctx context.Context, g core.Goal) error
	GetGoal(ctx context.Context, id string) (core.Goal, error)
	ListGoals(ctx context.Context) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, id string) error

	ListAlerts(ctx context.Context) ([]core.Alert, error)
	UpsertAlert(ctx context.Context, a core.Alert) error
	MarkAlertRead(ctx context.Context, id string) (core.Alert, error)

	Close() error
}

// AlertPublisher announces created or re-opened alerts. The AMQP client
// implements it; a nil publisher disables publishing.
type AlertPublisher interface {
	PublishAlertEvent(ctx context.Context, alertID, categoryID, period string, percentage float64) error
	Close() error
}
