package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/amqp"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/sheets/memory"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

func newFixture(t *testing.T) (*storage.SQLiteRepository, *memory.Store, *ExportWorker, core.Transaction) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "wallet.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	user, err := repo.CreateUser(ctx, core.User{
		Username: "alice", Email: "alice@example.com",
		PasswordHash: "hash", DefaultCurrency: core.CurrencyUSD,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	account, err := repo.CreateAccount(ctx, core.Account{
		Name: "main", Type: core.AccountChecking,
		Currency: core.CurrencyUSD, OwnerID: user.ID,
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	txn, err := repo.CreateTransaction(ctx, core.Transaction{
		Amount: core.Money{Cents: 1500}, Type: core.TransactionExpense,
		Description: "coffee", Date: time.Now(),
		Currency: core.CurrencyUSD, AccountID: account.ID, OwnerID: user.ID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	store := memory.New()
	return repo, store, NewExportWorker(repo, store, 10), txn
}

func TestHandleExportMessageAppendsAndMarks(t *testing.T) {
	repo, store, w, txn := newFixture(t)
	ctx := context.Background()

	msg := amqp.NewTransactionExportMessage(txn.ID, 1)
	if err := w.HandleExportMessage(ctx, msg); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}

	items := store.Items()
	if len(items) != 1 || items[0].ID != txn.ID {
		t.Fatalf("spreadsheet rows = %v, want one row for transaction %d", items, txn.ID)
	}

	pending, err := repo.PendingExports(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExports: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("still pending after export: %v", pending)
	}
}

func TestHandleExportMessageSkipsDeletedTransaction(t *testing.T) {
	repo, store, w, txn := newFixture(t)
	ctx := context.Background()

	if err := repo.DeleteTransaction(ctx, txn.OwnerID, txn.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	msg := amqp.NewTransactionExportMessage(txn.ID, 1)
	if err := w.HandleExportMessage(ctx, msg); err != nil {
		t.Fatalf("HandleExportMessage on deleted transaction: %v", err)
	}
	if got := len(store.Items()); got != 0 {
		t.Errorf("spreadsheet rows = %d, want 0", got)
	}
}

func TestProcessPendingExportsSweepsBatch(t *testing.T) {
	_, store, w, txn := newFixture(t)
	ctx := context.Background()

	exported, err := w.ProcessPendingExports(ctx)
	if err != nil {
		t.Fatalf("ProcessPendingExports: %v", err)
	}
	if exported != 1 {
		t.Fatalf("exported = %d, want 1", exported)
	}
	if got := len(store.Items()); got != 1 {
		t.Fatalf("spreadsheet rows = %d, want 1", got)
	}

	// Second sweep finds nothing left.
	exported, err = w.ProcessPendingExports(ctx)
	if err != nil {
		t.Fatalf("ProcessPendingExports second pass: %v", err)
	}
	if exported != 0 {
		t.Errorf("second sweep exported = %d, want 0", exported)
	}
	_ = txn
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, core.Transaction) (string, error) {
	return "", errors.New("sheets unavailable")
}

func TestAppendFailureMarksErrorWithoutRequeue(t *testing.T) {
	repo, _, _, txn := newFixture(t)
	ctx := context.Background()

	w := NewExportWorker(repo, failingAppender{}, 10)
	if err := w.HandleExportMessage(ctx, amqp.NewTransactionExportMessage(txn.ID, 1)); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}

	// The row left the pending queue and is parked in the error state.
	pending, err := repo.PendingExports(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExports: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("failed export still pending: %v", pending)
	}
}
