package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Zigorr/Wallet-Fullstack/internal/amqp"
	"github.com/Zigorr/Wallet-Fullstack/internal/cli"
	"github.com/Zigorr/Wallet-Fullstack/internal/sheets"
	gsheet "github.com/Zigorr/Wallet-Fullstack/internal/sheets/google"
	"github.com/Zigorr/Wallet-Fullstack/internal/sheets/memory"
	"github.com/Zigorr/Wallet-Fullstack/internal/worker"
)

func main() {
	logger := cli.SetupLogger()
	logger.Info("Starting export-worker")

	cfg := cli.LoadConfig(logger)

	repo := cli.OpenStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without a spreadsheet the worker appends to an in-memory store; useful
	// for local runs and keeps the queue drained.
	var appender sheets.TransactionAppender
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewClient(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets client initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		appender = memory.New()
		logger.Info("Google Sheets disabled - exporting to in-memory store")
	}

	exportWorker := worker.NewExportWorker(repo, appender, cfg.ExportBatchSize)

	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup export sweep failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if amqpClient := cli.ConnectAMQP(logger, cfg); amqpClient != nil {
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeTransactionExport(ctx, func(msg *amqp.TransactionExportMessage) error {
				return exportWorker.HandleExportMessage(ctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		return exportWorker.Run(ctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Export worker stopped gracefully")
}
