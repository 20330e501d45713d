package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	service := services.NewFinanceService(repo, nil, cfg.AlertWarningThreshold)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	var backup worker.Backup
	if cfg.BackupEnabled() {
		sheetsClient, err := sheets.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		backup = sheetsClient
		logger.Info("Snapshot backup enabled", "interval", cfg.BackupInterval.String())
	} else {
		logger.Info("Snapshot backup disabled, GOOGLE_SPREADSHEET_ID not set")
	}

	notifyWorker := worker.NewNotifyWorker(service)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Error("Failed to close AMQP client", "error", err)
		}
		if err := service.Close(); err != nil {
			logger.Error("Failed to close service", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting alert event consumer", "queue", cfg.AMQPQueue)
		return amqpClient.ConsumeAlertEvents(gctx, func(msg *amqp.AlertEventMessage) error {
			return notifyWorker.HandleAlertEvent(gctx, msg)
		})
	})

	if backup != nil {
		g.Go(func() error {
			logger.Info("Starting backup loop", "interval", cfg.BackupInterval.String())
			return notifyWorker.RunBackupLoop(gctx, backup, cfg.BackupInterval)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		amqpClient.Close()
		service.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
