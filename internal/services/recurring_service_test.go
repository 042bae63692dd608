package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

func newRecurringFixture(t *testing.T) (*storage.SQLiteRepository, *RecurringService, core.User, core.Account) {
	t.Helper()
	repo := newTestStorage(t)
	txs := NewTransactionService(repo, nil)
	svc := NewRecurringService(repo, txs)
	user := seedUser(t, repo, "alice")
	account := seedAccount(t, repo, user.ID, core.CurrencyUSD)
	return repo, svc, user, account
}

func monthlyRent(user core.User, account core.Account, start core.Date) core.RecurringTransaction {
	return core.RecurringTransaction{
		Name:      "Rent",
		Amount:    core.Money{Cents: 120000},
		Type:      core.TransactionExpense,
		Currency:  core.CurrencyUSD,
		Frequency: core.Monthly,
		StartDate: start,
		AccountID: account.ID,
		OwnerID:   user.ID,
	}
}

func TestRecurringCreateStartsAtStartDate(t *testing.T) {
	_, svc, user, account := newRecurringFixture(t)
	ctx := context.Background()

	start := core.NewDate(2026, 9, 1)
	created, err := svc.Create(ctx, monthlyRent(user, account, start))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !created.NextDueDate.Equal(start.Time) {
		t.Errorf("NextDueDate = %s, want start date %s",
			created.NextDueDate.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if !created.IsActive {
		t.Error("new schedule is not active")
	}
}

func TestRecurringCreateRejectsCurrencyMismatch(t *testing.T) {
	_, svc, user, account := newRecurringFixture(t)
	ctx := context.Background()

	rt := monthlyRent(user, account, core.NewDate(2026, 9, 1))
	rt.Currency = core.CurrencyEUR

	_, err := svc.Create(ctx, rt)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("Create with mismatched currency err = %v, want validation", err)
	}
}

func TestRecurringUpdateRejectsForeignAccount(t *testing.T) {
	repo, svc, user, account := newRecurringFixture(t)
	ctx := context.Background()

	other := seedUser(t, repo, "bob")
	otherAccount := seedAccount(t, repo, other.ID, core.CurrencyUSD)

	created, err := svc.Create(ctx, monthlyRent(user, account, core.NewDate(2026, 8, 1)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.AccountID = otherAccount.ID
	if _, err := svc.Update(ctx, created); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Update onto another user's account err = %v, want not found", err)
	}

	// The schedule must still point at the owner's account, and firing it
	// must not touch the other user's balance.
	kept, err := svc.Get(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if kept.AccountID != account.ID {
		t.Fatalf("schedule AccountID = %d, want %d", kept.AccountID, account.ID)
	}

	if _, err := svc.ProcessOne(ctx, user.ID, created.ID); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	untouched, err := repo.GetAccount(ctx, other.ID, otherAccount.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if untouched.Balance.Cents != 100000 {
		t.Errorf("other user's balance = %d, want untouched 100000", untouched.Balance.Cents)
	}
}

func TestRecurringUpdateRejectsCurrencyMismatch(t *testing.T) {
	_, svc, user, account := newRecurringFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, monthlyRent(user, account, core.NewDate(2026, 8, 1)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Currency = core.CurrencyEUR
	if _, err := svc.Update(ctx, created); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("Update with mismatched currency err = %v, want validation", err)
	}
}

func TestProcessOneBooksOccurrenceAndAdvances(t *testing.T) {
	_, svc, user, account := newRecurringFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, monthlyRent(user, account, core.NewDate(2026, 8, 1)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	occurrence, err := svc.ProcessOne(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}

	if occurrence.RecurringID == nil || *occurrence.RecurringID != created.ID {
		t.Errorf("occurrence RecurringID = %v, want %d", occurrence.RecurringID, created.ID)
	}
	if got := core.DateOf(occurrence.Date); !got.Equal(core.NewDate(2026, 8, 1).Time) {
		t.Errorf("occurrence date = %s, want 2026-08-01", got.Format("2006-01-02"))
	}
	if occurrence.Description != "Rent" {
		t.Errorf("occurrence description = %q, want schedule name", occurrence.Description)
	}

	advanced, err := svc.Get(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !advanced.NextDueDate.Equal(core.NewDate(2026, 9, 1).Time) {
		t.Errorf("NextDueDate after fire = %s, want 2026-09-01",
			advanced.NextDueDate.Format("2006-01-02"))
	}
	if !advanced.IsActive {
		t.Error("open-ended schedule went inactive")
	}
}

func TestProcessOneRejectsInactive(t *testing.T) {
	_, svc, user, account := newRecurringFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, monthlyRent(user, account, core.NewDate(2026, 8, 1)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	created.IsActive = false
	if _, err := svc.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	_, err = svc.ProcessOne(ctx, user.ID, created.ID)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("ProcessOne on inactive schedule err = %v, want validation", err)
	}
}

func TestProcessDueSweepsAndDeactivates(t *testing.T) {
	repo, svc, user, account := newRecurringFixture(t)
	ctx := context.Background()

	// Due, open-ended.
	due, err := svc.Create(ctx, monthlyRent(user, account, core.NewDate(2026, 8, 1)))
	if err != nil {
		t.Fatalf("Create due: %v", err)
	}

	// Not yet due.
	future := monthlyRent(user, account, core.NewDate(2026, 12, 1))
	future.Name = "Insurance"
	if _, err := svc.Create(ctx, future); err != nil {
		t.Fatalf("Create future: %v", err)
	}

	// Due, and firing it lands the next due date past the end date.
	ending := monthlyRent(user, account, core.NewDate(2026, 8, 15))
	ending.Name = "Gym"
	ending.EndDate = core.NewDate(2026, 8, 31)
	endingCreated, err := svc.Create(ctx, ending)
	if err != nil {
		t.Fatalf("Create ending: %v", err)
	}

	processed, err := svc.ProcessDue(ctx, core.NewDate(2026, 8, 20))
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if processed != 2 {
		t.Fatalf("processed = %d, want 2", processed)
	}

	txns, err := repo.ListTransactions(ctx, user.ID, storage.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("booked %d occurrences, want 2", len(txns))
	}

	advanced, err := svc.Get(ctx, user.ID, due.ID)
	if err != nil {
		t.Fatalf("Get due: %v", err)
	}
	if !advanced.NextDueDate.Equal(core.NewDate(2026, 9, 1).Time) {
		t.Errorf("due schedule NextDueDate = %s, want 2026-09-01",
			advanced.NextDueDate.Format("2006-01-02"))
	}

	expired, err := svc.Get(ctx, user.ID, endingCreated.ID)
	if err != nil {
		t.Fatalf("Get ending: %v", err)
	}
	if expired.IsActive {
		t.Error("schedule past its end date is still active")
	}
}
