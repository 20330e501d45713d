// Package worker contains the background side of the alert pipeline: it
// consumes alert events from AMQP and periodically backs the store up to
// Google Sheets.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Backup is the off-site snapshot target. The Sheets client implements it.
type Backup interface {
	AppendSnapshot(ctx context.Context, snap export.Export) error
}

// NotifyWorker dispatches notifications for alert events and runs the
// periodic snapshot backup.
type NotifyWorker struct {
	service *services.FinanceService
	logger  *log.Logger
}

func NewNotifyWorker(service *services.FinanceService) *NotifyWorker {
	return &NotifyWorker{
		service: service,
		logger:  log.New(log.DefaultConfig()).WithComponent("worker"),
	}
}

// HandleAlertEvent processes a single alert event from AMQP. The event
// carries identifiers only; the full alert is read from the store.
func (w *NotifyWorker) HandleAlertEvent(ctx context.Context, msg *amqp.AlertEventMessage) error {
	alerts, err := w.service.ListAlerts(ctx)
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}

	var alert *core.Alert
	for i := range alerts {
		if alerts[i].ID == msg.AlertID {
			alert = &alerts[i]
			break
		}
	}
	if alert == nil {
		// The alert may belong to a store this worker does not share (e.g. a
		// memory backend in the API process). Dropped, not requeued.
		w.logger.WarnContext(ctx, "Alert event references unknown alert",
			"alert_id", msg.AlertID,
			"category_id", msg.CategoryID)
		return nil
	}

	w.dispatch(ctx, *alert)
	return nil
}

// dispatch delivers the notification. The log line is the delivery channel;
// operators tail it or ship it to their notifier of choice.
func (w *NotifyWorker) dispatch(ctx context.Context, alert core.Alert) {
	attrs := []any{
		"category_id", alert.CategoryID,
		"period", alert.Period,
		"percentage", alert.Percentage,
		"amount_spent", alert.AmountSpent.String(),
		"limit_amount", alert.LimitAmount.String(),
		"message", alert.Message,
	}
	if alert.Percentage >= 100 {
		w.logger.ErrorContext(ctx, "Budget alert", attrs...)
		return
	}
	w.logger.WarnContext(ctx, "Budget alert", attrs...)
}

// MarkRead exposes alert acknowledgement for operational tooling.
func (w *NotifyWorker) MarkRead(ctx context.Context, alertID string) error {
	if _, err := w.service.MarkAlertRead(ctx, alertID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("alert %s: %w", alertID, err)
		}
		return err
	}
	return nil
}

// RunBackupLoop pushes a snapshot to the backup target every interval until
// the context is cancelled. Individual failures are logged and retried on the
// next tick.
func (w *NotifyWorker) RunBackupLoop(ctx context.Context, backup Backup, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Stopping backup loop", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.runBackup(ctx, backup); err != nil {
				w.logger.ErrorContext(ctx, "Snapshot backup failed", "error", err)
			}
		}
	}
}

func (w *NotifyWorker) runBackup(ctx context.Context, backup Backup) error {
	snap, err := w.service.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	if err := backup.AppendSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}
