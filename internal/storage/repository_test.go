package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "wallet.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, username string) core.User {
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

func seedAccount(t *testing.T, repo *SQLiteRepository, ownerID int64, cur core.Currency, initialCents int64) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		Name:           "acct",
		Type:           core.AccountChecking,
		Currency:       cur,
		InitialBalance: core.Money{Cents: initialCents},
		OwnerID:        ownerID,
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return a
}

func TestUserUniqueness(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "alice")

	_, err := repo.CreateUser(ctx, core.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
	if !errors.Is(err, core.ErrConflict) {
		t.Errorf("duplicate username err = %v, want conflict", err)
	}

	_, err = repo.CreateUser(ctx, core.User{Username: "bob", Email: "alice@example.com", PasswordHash: "h"})
	if !errors.Is(err, core.ErrConflict) {
		t.Errorf("duplicate email err = %v, want conflict", err)
	}

	u, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %s", u.Email)
	}

	if _, err := repo.GetUserByUsername(ctx, "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing user err = %v, want not found", err)
	}
}

func TestAccountBalanceDerivedFromTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "alice")
	a := seedAccount(t, repo, u.ID, core.CurrencyUSD, 10000)

	mk := func(typ core.TransactionType, cents int64) {
		t.Helper()
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			Amount:    core.Money{Cents: cents},
			Type:      typ,
			Date:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Currency:  core.CurrencyUSD,
			AccountID: a.ID,
			OwnerID:   u.ID,
		})
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	mk(core.TransactionIncome, 5000)
	mk(core.TransactionExpense, 2000)

	got, err := repo.GetAccount(ctx, u.ID, a.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Balance.Cents != 13000 {
		t.Errorf("balance = %d, want 13000", got.Balance.Cents)
	}
	if got.InitialBalance.Cents != 10000 {
		t.Errorf("initial = %d, want 10000", got.InitialBalance.Cents)
	}
}

func TestAccountOwnerScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := seedUser(t, repo, "alice")
	bob := seedUser(t, repo, "bob")
	a := seedAccount(t, repo, alice.ID, core.CurrencyUSD, 0)

	if _, err := repo.GetAccount(ctx, bob.ID, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user get err = %v, want not found", err)
	}
	if err := repo.DeleteAccount(ctx, bob.ID, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user delete err = %v, want not found", err)
	}

	accounts, err := repo.ListAccounts(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("bob sees %d accounts, want 0", len(accounts))
	}
}

func TestCategoryConflictAndUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "alice")

	c, err := repo.CreateCategory(ctx, core.Category{Name: "Groceries", Type: core.CategoryExpense, Color: "#00ff00", OwnerID: u.ID})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	_, err = repo.CreateCategory(ctx, core.Category{Name: "Groceries", Type: core.CategoryExpense, OwnerID: u.ID})
	if !errors.Is(err, core.ErrConflict) {
		t.Errorf("duplicate category err = %v, want conflict", err)
	}

	// Same name is fine for another user.
	other := seedUser(t, repo, "bob")
	if _, err := repo.CreateCategory(ctx, core.Category{Name: "Groceries", Type: core.CategoryExpense, OwnerID: other.ID}); err != nil {
		t.Errorf("same name for other user: %v", err)
	}

	c.Color = "#ff0000"
	if err := repo.UpdateCategory(ctx, c); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	got, err := repo.GetCategory(ctx, u.ID, c.ID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got.Color != "#ff0000" {
		t.Errorf("color = %s", got.Color)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "alice")
	a1 := seedAccount(t, repo, u.ID, core.CurrencyUSD, 0)
	a2 := seedAccount(t, repo, u.ID, core.CurrencyUSD, 0)

	mk := func(acct int64, typ core.TransactionType, day int) {
		t.Helper()
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			Amount:    core.Money{Cents: 100},
			Type:      typ,
			Date:      time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
			Currency:  core.CurrencyUSD,
			AccountID: acct,
			OwnerID:   u.ID,
		})
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	mk(a1.ID, core.TransactionExpense, 1)
	mk(a1.ID, core.TransactionIncome, 10)
	mk(a2.ID, core.TransactionExpense, 20)

	tests := []struct {
		name   string
		filter TransactionFilter
		want   int
	}{
		{"all", TransactionFilter{}, 3},
		{"by account", TransactionFilter{AccountID: a1.ID}, 2},
		{"by type", TransactionFilter{Type: core.TransactionExpense}, 2},
		{"by date range", TransactionFilter{From: core.NewDate(2026, 8, 5), To: core.NewDate(2026, 8, 15)}, 1},
		{"limit", TransactionFilter{Limit: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListTransactions(ctx, u.ID, tt.filter)
			if err != nil {
				t.Fatalf("ListTransactions: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d transactions, want %d", len(got), tt.want)
			}
		})
	}

	// Newest first.
	all, err := repo.ListTransactions(ctx, u.ID, TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if all[0].Date.Day() != 20 {
		t.Errorf("first transaction day = %d, want 20", all[0].Date.Day())
	}
}

func TestTransferPairDeletesTogether(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "alice")
	src := seedAccount(t, repo, u.ID, core.CurrencyUSD, 10000)
	dst := seedAccount(t, repo, u.ID, core.CurrencyEUR, 0)

	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	out := core.Transaction{
		Amount: core.Money{Cents: 10000}, Type: core.TransactionExpense,
		Currency: core.CurrencyUSD, AccountID: src.ID, OwnerID: u.ID,
		Date: date, TransferID: "pair-1",
	}
	in := core.Transaction{
		Amount: core.Money{Cents: 8500}, Type: core.TransactionIncome,
		Currency: core.CurrencyEUR, AccountID: dst.ID, OwnerID: u.ID,
		Date: date, TransferID: "pair-1",
	}

	out, in, err := repo.CreateTransferPair(ctx, out, in)
	if err != nil {
		t.Fatalf("CreateTransferPair: %v", err)
	}

	srcAcct, err := repo.GetAccount(ctx, u.ID, src.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if srcAcct.Balance.Cents != 0 {
		t.Errorf("source balance = %d, want 0", srcAcct.Balance.Cents)
	}
	dstAcct, err := repo.GetAccount(ctx, u.ID, dst.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if dstAcct.Balance.Cents != 8500 {
		t.Errorf("destination balance = %d, want 8500", dstAcct.Balance.Cents)
	}

	// Deleting one leg removes both.
	if err := repo.DeleteTransaction(ctx, u.ID, out.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, u.ID, in.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("paired leg err = %v, want not found", err)
	}
}

func TestAdvanceRecurringOptimisticLock(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "alice")
	a := seedAccount(t, repo, u.ID, core.CurrencyUSD, 0)

	rt, err := repo.CreateRecurring(ctx, core.RecurringTransaction{
		Name: "Rent", Amount: core.Money{Cents: 120000}, Type: core.TransactionExpense,
		Currency: core.CurrencyUSD, Frequency: core.Monthly,
		StartDate: core.NewDate(2026, 8, 1), NextDueDate: core.NewDate(2026, 8, 1),
		IsActive: true, AccountID: a.ID, OwnerID: u.ID,
	})
	if err != nil {
		t.Fatalf("CreateRecurring: %v", err)
	}

	occurrence := core.Transaction{
		Amount: rt.Amount, Type: rt.Type, Currency: rt.Currency,
		AccountID: rt.AccountID, OwnerID: rt.OwnerID,
		Date: rt.NextDueDate.Time, RecurringID: &rt.ID,
	}

	if _, err := repo.AdvanceRecurring(ctx, rt, core.NewDate(2026, 9, 1), true, occurrence); err != nil {
		t.Fatalf("AdvanceRecurring: %v", err)
	}

	// Second advance against the stale due date loses the race.
	_, err = repo.AdvanceRecurring(ctx, rt, core.NewDate(2026, 9, 1), true, occurrence)
	if !errors.Is(err, core.ErrConflict) {
		t.Errorf("stale advance err = %v, want conflict", err)
	}

	// The losing attempt must not have inserted a transaction.
	txs, err := repo.ListTransactions(ctx, u.ID, TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("got %d occurrences, want 1", len(txs))
	}

	got, err := repo.GetRecurring(ctx, u.ID, rt.ID)
	if err != nil {
		t.Fatalf("GetRecurring: %v", err)
	}
	if got.NextDueDate.Format("2006-01-02") != "2026-09-01" {
		t.Errorf("next due = %s, want 2026-09-01", got.NextDueDate.Format("2006-01-02"))
	}
}

func TestAdvanceRecurringDeactivates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "alice")
	a := seedAccount(t, repo, u.ID, core.CurrencyUSD, 0)

	rt, err := repo.CreateRecurring(ctx, core.RecurringTransaction{
		Name: "Sub", Amount: core.Money{Cents: 999}, Type: core.TransactionExpense,
		Currency: core.CurrencyUSD, Frequency: core.Monthly,
		StartDate: core.NewDate(2026, 8, 1), EndDate: core.NewDate(2026, 8, 15),
		NextDueDate: core.NewDate(2026, 8, 1), IsActive: true, AccountID: a.ID, OwnerID: u.ID,
	})
	if err != nil {
		t.Fatalf("CreateRecurring: %v", err)
	}

	occ := core.Transaction{
		Amount: rt.Amount, Type: rt.Type, Currency: rt.Currency,
		AccountID: rt.AccountID, OwnerID: rt.OwnerID, Date: rt.NextDueDate.Time, RecurringID: &rt.ID,
	}
	if _, err := repo.AdvanceRecurring(ctx, rt, core.NewDate(2026, 9, 1), false, occ); err != nil {
		t.Fatalf("AdvanceRecurring: %v", err)
	}

	due, err := repo.ListDueRecurring(ctx, core.NewDate(2027, 1, 1))
	if err != nil {
		t.Fatalf("ListDueRecurring: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("deactivated schedule still listed as due")
	}
}

func TestCurrencyAggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "alice")
	eur1 := seedAccount(t, repo, u.ID, core.CurrencyEUR, 10000)
	seedAccount(t, repo, u.ID, core.CurrencyEUR, 5000)
	seedAccount(t, repo, u.ID, core.CurrencyUSD, 3000)

	_, err := repo.CreateTransaction(ctx, core.Transaction{
		Amount: core.Money{Cents: 2000}, Type: core.TransactionIncome,
		Currency: core.CurrencyEUR, AccountID: eur1.ID, OwnerID: u.ID,
		Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	aggs, err := repo.CurrencyAggregates(ctx, u.ID)
	if err != nil {
		t.Fatalf("CurrencyAggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("got %d aggregates, want 2", len(aggs))
	}

	byCur := map[core.Currency]core.CurrencyAggregate{}
	for _, a := range aggs {
		byCur[a.Currency] = a
	}
	if eur := byCur[core.CurrencyEUR]; eur.Balance.Cents != 17000 || eur.Accounts != 2 || eur.Income.Cents != 2000 {
		t.Errorf("EUR aggregate = %+v", eur)
	}
	if usd := byCur[core.CurrencyUSD]; usd.Balance.Cents != 3000 || usd.Accounts != 1 {
		t.Errorf("USD aggregate = %+v", usd)
	}

	summary := core.BuildSummary(aggs)
	if summary.Currency != core.CurrencyEUR || summary.TotalBalance.Cents != 17000 {
		t.Errorf("summary = %+v, want 17000 EUR", summary)
	}
}

func TestCategoryBreakdownAndMonthlySeries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "alice")
	a := seedAccount(t, repo, u.ID, core.CurrencyUSD, 0)
	groceries, err := repo.CreateCategory(ctx, core.Category{Name: "Groceries", Type: core.CategoryExpense, OwnerID: u.ID})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	mk := func(cents int64, catID *int64, typ core.TransactionType, year, month, day int) {
		t.Helper()
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			Amount: core.Money{Cents: cents}, Type: typ, Currency: core.CurrencyUSD,
			AccountID: a.ID, CategoryID: catID, OwnerID: u.ID,
			Date: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	mk(3000, &groceries.ID, core.TransactionExpense, 2026, 7, 10)
	mk(2000, &groceries.ID, core.TransactionExpense, 2026, 8, 5)
	mk(1500, nil, core.TransactionExpense, 2026, 8, 6)
	mk(50000, nil, core.TransactionIncome, 2026, 8, 1)

	breakdown, err := repo.CategoryBreakdown(ctx, u.ID, core.TransactionExpense, core.NewDate(2026, 8, 1), core.NewDate(2026, 8, 31))
	if err != nil {
		t.Fatalf("CategoryBreakdown: %v", err)
	}
	if len(breakdown) != 2 {
		t.Fatalf("got %d buckets, want 2", len(breakdown))
	}
	if breakdown[0].Name != "Groceries" || breakdown[0].Amount.Cents != 2000 {
		t.Errorf("top bucket = %+v", breakdown[0])
	}
	if breakdown[1].CategoryID != 0 || breakdown[1].Name != "Uncategorized" {
		t.Errorf("uncategorized bucket = %+v", breakdown[1])
	}

	series, err := repo.MonthlySeries(ctx, u.ID, core.NewDate(2026, 7, 1))
	if err != nil {
		t.Fatalf("MonthlySeries: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("got %d months, want 2", len(series))
	}
	if series[0].Year != 2026 || series[0].Month != 7 || series[0].Expense.Cents != 3000 {
		t.Errorf("july = %+v", series[0])
	}
	if series[1].Income.Cents != 50000 || series[1].Expense.Cents != 3500 {
		t.Errorf("august = %+v", series[1])
	}
}

func TestExportQueue(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "alice")
	a := seedAccount(t, repo, u.ID, core.CurrencyUSD, 0)

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		Amount: core.Money{Cents: 100}, Type: core.TransactionExpense, Currency: core.CurrencyUSD,
		AccountID: a.ID, OwnerID: u.ID, Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	pending, err := repo.PendingExports(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExports: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != tx.ID || pending[0].Version != 1 {
		t.Fatalf("pending = %+v", pending)
	}

	if err := repo.MarkExported(ctx, tx.ID); err != nil {
		t.Fatalf("MarkExported: %v", err)
	}
	pending, err = repo.PendingExports(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExports: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("exported transaction still pending")
	}

	// An update requeues it with a bumped version.
	tx.Description = "edited"
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	pending, err = repo.PendingExports(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExports: %v", err)
	}
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Errorf("after update pending = %+v, want version 2", pending)
	}
}
