package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/rates"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "wallet.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *storage.SQLiteRepository, username string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Username:        username,
		Email:           username + "@example.com",
		PasswordHash:    "hash",
		DefaultCurrency: core.CurrencyUSD,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func seedAccount(t *testing.T, repo *storage.SQLiteRepository, ownerID int64, cur core.Currency) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		Name:           "acct-" + string(cur),
		Type:           core.AccountChecking,
		Currency:       cur,
		InitialBalance: core.Money{Cents: 100000},
		OwnerID:        ownerID,
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return a
}

func seedCategory(t *testing.T, repo *storage.SQLiteRepository, ownerID int64, name string, typ core.CategoryType) core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), core.Category{
		Name:    name,
		Type:    typ,
		Color:   "#336699",
		OwnerID: ownerID,
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

func TestTransactionCreateRejectsCurrencyMismatch(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, nil)
	ctx := context.Background()

	user := seedUser(t, repo, "alice")
	account := seedAccount(t, repo, user.ID, core.CurrencyUSD)

	_, err := svc.Create(ctx, core.Transaction{
		Amount:    core.Money{Cents: 500},
		Type:      core.TransactionExpense,
		Date:      time.Now(),
		Currency:  core.CurrencyEUR,
		AccountID: account.ID,
		OwnerID:   user.ID,
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("Create with mismatched currency err = %v, want validation", err)
	}
}

func TestTransactionCreateRejectsCategoryTypeMismatch(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, nil)
	ctx := context.Background()

	user := seedUser(t, repo, "alice")
	account := seedAccount(t, repo, user.ID, core.CurrencyUSD)
	salary := seedCategory(t, repo, user.ID, "Salary", core.CategoryIncome)

	_, err := svc.Create(ctx, core.Transaction{
		Amount:     core.Money{Cents: 500},
		Type:       core.TransactionExpense,
		Date:       time.Now(),
		Currency:   core.CurrencyUSD,
		AccountID:  account.ID,
		CategoryID: &salary.ID,
		OwnerID:    user.ID,
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("Create with income category on expense err = %v, want validation", err)
	}
}

func TestTransactionCreateNotifiesOwner(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, nil)
	ctx := context.Background()

	user := seedUser(t, repo, "alice")
	account := seedAccount(t, repo, user.ID, core.CurrencyUSD)

	var notified int64
	svc.OnChange(func(ownerID int64) { notified = ownerID })

	created, err := svc.Create(ctx, core.Transaction{
		Amount:    core.Money{Cents: 2500},
		Type:      core.TransactionIncome,
		Date:      time.Now(),
		Currency:  core.CurrencyUSD,
		AccountID: account.ID,
		OwnerID:   user.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Error("created transaction has no ID")
	}
	if notified != user.ID {
		t.Errorf("OnChange owner = %d, want %d", notified, user.ID)
	}
}

func TestTransactionUpdateRejectsTransferLegs(t *testing.T) {
	repo := newTestStorage(t)
	txs := NewTransactionService(repo, nil)
	transfers := NewTransferService(repo, rates.Default(), txs)
	ctx := context.Background()

	user := seedUser(t, repo, "alice")
	from := seedAccount(t, repo, user.ID, core.CurrencyUSD)
	to, err := repo.CreateAccount(ctx, core.Account{
		Name: "savings", Type: core.AccountSavings,
		Currency: core.CurrencyUSD, OwnerID: user.ID,
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	tr, err := transfers.Transfer(ctx, user.ID, TransferRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        core.Money{Cents: 10000},
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	leg := tr.Out
	leg.Description = "edited"
	_, err = txs.Update(ctx, leg)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("Update on transfer leg err = %v, want validation", err)
	}
}

func TestTransactionDeleteRemovesRow(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, nil)
	ctx := context.Background()

	user := seedUser(t, repo, "alice")
	account := seedAccount(t, repo, user.ID, core.CurrencyUSD)

	created, err := svc.Create(ctx, core.Transaction{
		Amount:    core.Money{Cents: 700},
		Type:      core.TransactionExpense,
		Date:      time.Now(),
		Currency:  core.CurrencyUSD,
		AccountID: account.ID,
		OwnerID:   user.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, user.ID, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, user.ID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get after delete err = %v, want not found", err)
	}
}
