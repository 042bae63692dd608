package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/amqp"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/log"
	"github.com/Zigorr/Wallet-Fullstack/internal/sheets"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

// ExportWorker copies transactions into the spreadsheet. It is fed two ways:
// AMQP messages for the fast path, and a periodic sweep over rows still
// marked pending for everything the queue missed.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	sheets    sheets.TransactionAppender
	audit     *log.StructuredLogger
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, appender sheets.TransactionAppender, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &ExportWorker{
		storage:   storage,
		sheets:    appender,
		audit:     log.NewStructuredLogger(log.Default(log.ComponentExport)),
		batchSize: batchSize,
	}
}

// HandleExportMessage processes one transaction export message from AMQP.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.TransactionExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"id", msg.ID,
		"version", msg.Version)
	return w.exportOne(ctx, msg.ID)
}

// ProcessPendingExports sweeps a batch of rows still marked pending and
// returns how many were exported.
func (w *ExportWorker) ProcessPendingExports(ctx context.Context) (int, error) {
	pending, err := w.storage.PendingExports(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending exports: %w", err)
	}

	exported := 0
	for _, p := range pending {
		if err := w.exportOne(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction",
				"transaction_id", p.ID, "error", err)
			continue
		}
		exported++
	}
	return exported, nil
}

// StartupCheck drains whatever is pending before the consume loop starts, so
// rows queued while the worker was down do not wait for the next sweep.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	for {
		exported, err := w.ProcessPendingExports(ctx)
		if err != nil {
			return err
		}
		if exported > 0 {
			slog.InfoContext(ctx, "Startup sweep exported transactions", "count", exported)
		}
		if exported < w.batchSize {
			return nil
		}
	}
}

// Run sweeps pending rows on the given interval until the context is
// cancelled.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			exported, err := w.ProcessPendingExports(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Pending export sweep failed", "error", err)
				continue
			}
			if exported > 0 {
				slog.InfoContext(ctx, "Swept pending transactions to spreadsheet",
					"count", exported)
			}
		}
	}
}

// exportOne reads the current row, appends it to the spreadsheet and marks it
// exported. An append failure marks the row 'error' and is not retried; the
// row stays visible in the database for manual follow-up.
func (w *ExportWorker) exportOne(ctx context.Context, id int64) error {
	t, err := w.storage.GetTransactionForExport(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Deleted between publish and consume; nothing to export.
			slog.InfoContext(ctx, "Transaction gone before export, skipping", "id", id)
			return nil
		}
		return fmt.Errorf("get transaction %d: %w", id, err)
	}

	ref, err := w.sheets.Append(ctx, t)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"transaction_id", id, "error", markErr)
		}
		slog.ErrorContext(ctx, "Failed to append transaction to spreadsheet",
			"transaction_id", id, "error", err)
		return nil
	}

	if err := w.storage.MarkExported(ctx, id); err != nil {
		return fmt.Errorf("mark transaction %d exported: %w", id, err)
	}

	w.audit.LogTransactionExported(ctx, id, ref)
	return nil
}
