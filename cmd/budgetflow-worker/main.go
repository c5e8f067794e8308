package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"budgetflow/internal/amqp"
	"budgetflow/internal/config"
	"budgetflow/internal/export/sheets"
	"budgetflow/internal/log"
	"budgetflow/internal/store/sqlite"
	"budgetflow/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("starting budgetflow-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	// The worker always reads sqlite directly; it shares the database
	// file with the API server.
	repo, err := sqlite.New(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("failed to open sqlite store",
			log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var exporter worker.SpreadsheetExporter
	if cfg.GoogleSheetsExportOn {
		client, err := sheets.NewFromEnv(ctx, logger)
		if err != nil {
			logger.Error("failed to initialize sheets client", log.FieldError, err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("sheets export enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleReportSheetName)
	} else {
		logger.Info("sheets export disabled")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewExportWorker(repo, exporter, cfg.ReportOutputDir, logger)
	w.SetIntervals(cfg.ReportDebounce, cfg.ReportFallback)

	// Regenerate once on startup so a fresh deployment has artifacts
	// before the first change event arrives.
	if err := w.Export(ctx); err != nil {
		logger.Error("startup export failed", log.FieldError, err)
		// keep running, the next change event or fallback tick retries
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeWithRetry(gctx, w.HandleChangeMessage)
	})
	g.Go(func() error {
		return w.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully")
}
