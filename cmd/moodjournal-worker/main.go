package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"moodjournal/internal/amqp"
	"moodjournal/internal/cli"
	"moodjournal/internal/config"
	"moodjournal/internal/log"
	"moodjournal/internal/sheets"
	gsheet "moodjournal/internal/sheets/google"
	mem "moodjournal/internal/sheets/memory"
	"moodjournal/internal/storage"
	"moodjournal/internal/worker"
)

const amqpConnectAttempts = 5

func main() {
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentWorker)

	if cfg.DataBackend != config.BackendSQLite || !cfg.AMQPEnabled() {
		cli.Fatal(logger, "Worker misconfigured",
			fmt.Errorf("worker needs DATA_BACKEND=%s and AMQP_URL", config.BackendSQLite))
	}

	logger.Info("Starting moodjournal-worker")

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer repo.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	var exporter sheets.EntryExporter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		exporter = mem.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exporting in memory")
	}

	amqpClient, err := amqp.NewClientWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpConnectAttempts)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, exporter, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.ConsumeEntryEvents(gctx, syncWorker.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		logger.Info("Performing startup sync")
		if err := syncWorker.StartupSync(gctx); err != nil {
			logger.Error("Startup sync failed", log.FieldError, err)
		}

		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := syncWorker.StartupSync(gctx); err != nil {
					logger.Error("Periodic sync failed", log.FieldError, err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
	}

	if ctx.Err() != nil {
		<-done
	}
	logger.Info("Worker shutdown complete")
}
