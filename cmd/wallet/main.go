package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Zigorr/Wallet-Fullstack/internal/auth"
	"github.com/Zigorr/Wallet-Fullstack/internal/cache"
	"github.com/Zigorr/Wallet-Fullstack/internal/cli"
	apphttp "github.com/Zigorr/Wallet-Fullstack/internal/http"
	"github.com/Zigorr/Wallet-Fullstack/internal/middleware/ratelimit"
	"github.com/Zigorr/Wallet-Fullstack/internal/rates"
	"github.com/Zigorr/Wallet-Fullstack/internal/services"
)

func main() {
	logger := cli.SetupLogger()
	cfg := cli.LoadConfig(logger)

	repo := cli.OpenStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	provider, err := rates.Parse(cfg.ExchangeRates)
	if err != nil {
		logger.Error("Invalid EXCHANGE_RATES override", "error", err)
		os.Exit(1)
	}

	// Absent AMQP the API still works; rows wait for the worker's poll sweep.
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	cacheManager := cache.NewManager()
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	txs := services.NewTransactionService(repo, amqpClient)
	transfers := services.NewTransferService(repo, provider, txs)
	recurring := services.NewRecurringService(repo, txs)
	dashboard := services.NewDashboardService(repo, cacheManager)

	txs.OnChange(dashboard.Invalidate)
	transfers.OnChange(dashboard.Invalidate)
	recurring.OnChange(dashboard.Invalidate)

	srv := apphttp.NewServer(":"+cfg.Port, ratelimit.Config{
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	}, apphttp.Deps{
		Storage:      repo,
		Auth:         auth.NewService(cfg.JWTSecret, cfg.JWTExpiry),
		Transactions: txs,
		Transfers:    transfers,
		Recurring:    recurring,
		Dashboard:    dashboard,
		Rates:        provider,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting wallet API server", "port", cfg.Port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
