package main

import (
	"context"
	"errors"
	"os"
	"time"

	"baketrack/internal/amqp"
	"baketrack/internal/backend"
	"baketrack/internal/cli"
	"baketrack/internal/log"
	"baketrack/internal/services"
	gsheet "baketrack/internal/sheets/google"
	"baketrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	logger.Info("Starting baketrack-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.SheetsConfigured() {
		logger.Error("Google Sheets is not configured, nothing to sync to")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	sheetsClient, err := gsheet.New(context.Background(), backend.GoogleOptions(backendCfg))
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", log.FieldSheetsRef, cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize, logger)
	sweeper := services.NewSyncProcessor(repo, amqpClient, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
	}, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := sweeper.Stop(ctx); err != nil {
			logger.Warn("Sync processor did not stop cleanly", log.FieldError, err)
		}
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close failed", log.FieldError, err)
		}
		if err := repo.Close(); err != nil {
			logger.Error("Storage close failed", log.FieldError, err)
		}
	})

	// Rows written while the worker was down are pushed before consuming.
	logger.Info("Performing startup sync check")
	if _, _, err := syncWorker.ProcessPending(ctx); err != nil {
		logger.Error("Startup sync check failed", log.FieldError, err)
	}

	if err := sweeper.Start(ctx); err != nil {
		logger.Error("Failed to start sync processor", log.FieldError, err)
	}

	go func() {
		err := amqpClient.ConsumeTransactionSync(ctx, syncWorker.HandleSyncMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
