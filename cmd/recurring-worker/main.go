package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Zigorr/Wallet-Fullstack/internal/cli"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/services"
)

func main() {
	logger := cli.SetupLogger()
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadConfig(logger)

	repo := cli.OpenStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Occurrences this worker books flow to the export worker over AMQP.
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	txs := services.NewTransactionService(repo, amqpClient)
	recurring := services.NewRecurringService(repo, txs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweep := func() {
		processed, err := recurring.ProcessDue(ctx, core.DateOf(time.Now()))
		if err != nil {
			logger.Error("Recurring sweep failed", "error", err)
			return
		}
		if processed > 0 {
			logger.Info("Recurring sweep booked occurrences", "processed", processed)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// One sweep at startup so a worker that was down does not wait a
		// full interval to catch up.
		sweep()

		ticker := time.NewTicker(cfg.RecurringInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				sweep()
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Recurring worker stopped gracefully")
}
