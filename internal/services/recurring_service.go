package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/log"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

// RecurringService manages recurring transaction schedules and turns due
// schedules into concrete transactions.
type RecurringService struct {
	storage  *storage.SQLiteRepository
	txs      *TransactionService
	audit    *log.StructuredLogger
	onChange func(ownerID int64)
}

func NewRecurringService(storage *storage.SQLiteRepository, txs *TransactionService) *RecurringService {
	return &RecurringService{
		storage: storage,
		txs:     txs,
		audit:   log.NewStructuredLogger(log.Default(log.ComponentRecurring)),
	}
}

func (s *RecurringService) OnChange(fn func(ownerID int64)) {
	s.onChange = fn
}

func (s *RecurringService) notify(ownerID int64) {
	if s.onChange != nil {
		s.onChange(ownerID)
	}
}

// Create registers a schedule. The first occurrence fires on the start date
// itself, so next_due_date starts there.
func (s *RecurringService) Create(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := s.checkSchedule(ctx, rt); err != nil {
		return core.RecurringTransaction{}, err
	}

	rt.NextDueDate = rt.StartDate
	rt.IsActive = true
	return s.storage.CreateRecurring(ctx, rt)
}

// checkSchedule runs the write-path invariants: the account must belong to
// the schedule's owner and share its currency, and any category must belong
// to the owner and match the schedule's direction. Every occurrence the
// schedule ever books inherits these fields, so both Create and Update guard
// them.
func (s *RecurringService) checkSchedule(ctx context.Context, rt core.RecurringTransaction) error {
	if err := rt.Validate(); err != nil {
		return err
	}

	account, err := s.storage.GetAccount(ctx, rt.OwnerID, rt.AccountID)
	if err != nil {
		return err
	}
	if rt.Currency != account.Currency {
		return fmt.Errorf("%w: schedule currency %s does not match account currency %s",
			core.ErrValidation, rt.Currency, account.Currency)
	}
	if rt.CategoryID != nil {
		category, err := s.storage.GetCategory(ctx, rt.OwnerID, *rt.CategoryID)
		if err != nil {
			return err
		}
		if !categoryMatches(category.Type, rt.Type) {
			return fmt.Errorf("%w: category %q is %s, schedule is %s",
				core.ErrValidation, category.Name, category.Type, rt.Type)
		}
	}
	return nil
}

func (s *RecurringService) Get(ctx context.Context, ownerID, id int64) (core.RecurringTransaction, error) {
	return s.storage.GetRecurring(ctx, ownerID, id)
}

func (s *RecurringService) List(ctx context.Context, ownerID int64) ([]core.RecurringTransaction, error) {
	return s.storage.ListRecurring(ctx, ownerID)
}

func (s *RecurringService) Update(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := s.checkSchedule(ctx, rt); err != nil {
		return core.RecurringTransaction{}, err
	}
	if err := s.storage.UpdateRecurring(ctx, rt); err != nil {
		return core.RecurringTransaction{}, err
	}
	return s.storage.GetRecurring(ctx, rt.OwnerID, rt.ID)
}

func (s *RecurringService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.storage.DeleteRecurring(ctx, ownerID, id)
}

// ProcessOne fires a single schedule on demand. The schedule must be active,
// but it does not have to be due: "run it now" is an explicit user action.
func (s *RecurringService) ProcessOne(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	rt, err := s.storage.GetRecurring(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if !rt.IsActive {
		return core.Transaction{}, fmt.Errorf("%w: schedule %d is inactive", core.ErrValidation, id)
	}
	return s.fire(ctx, rt)
}

// ProcessDue sweeps every active schedule whose due date has arrived, across
// all users, and returns how many occurrences were booked. A schedule another
// worker advanced concurrently is skipped, not retried; it is simply no
// longer due.
func (s *RecurringService) ProcessDue(ctx context.Context, asOf core.Date) (int, error) {
	due, err := s.storage.ListDueRecurring(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("list due schedules: %w", err)
	}

	slog.InfoContext(ctx, "Processing due recurring transactions",
		"due", len(due),
		"as_of", asOf.Format("2006-01-02"))

	processed := 0
	for _, rt := range due {
		// A schedule whose whole remaining life is behind the end date only
		// needs deactivating.
		if !rt.EndDate.IsZero() && rt.NextDueDate.After(rt.EndDate.Time) {
			rt.IsActive = false
			if err := s.storage.UpdateRecurring(ctx, rt); err != nil {
				slog.ErrorContext(ctx, "Failed to deactivate expired schedule",
					"recurring_id", rt.ID, "error", err)
			}
			continue
		}

		if _, err := s.fire(ctx, rt); err != nil {
			if errors.Is(err, core.ErrConflict) {
				slog.InfoContext(ctx, "Schedule already advanced by another worker",
					"recurring_id", rt.ID)
				continue
			}
			slog.ErrorContext(ctx, "Failed to process recurring transaction",
				"recurring_id", rt.ID, "error", err)
			continue
		}
		processed++
	}

	slog.InfoContext(ctx, "Recurring sweep completed",
		"due", len(due), "processed", processed)
	return processed, nil
}

// fire books one occurrence dated at the schedule's current due date and
// advances the schedule, deactivating it when the next due date would fall
// past the end date.
func (s *RecurringService) fire(ctx context.Context, rt core.RecurringTransaction) (core.Transaction, error) {
	next := core.NextDueDate(rt.NextDueDate, rt.Frequency)
	active := !rt.ExpiresAfter(next)

	description := rt.Description
	if description == "" {
		description = rt.Name
	}

	occurrence := core.Transaction{
		Amount:      rt.Amount,
		Type:        rt.Type,
		Description: description,
		Date:        rt.NextDueDate.Time,
		Currency:    rt.Currency,
		AccountID:   rt.AccountID,
		CategoryID:  rt.CategoryID,
		OwnerID:     rt.OwnerID,
		RecurringID: &rt.ID,
	}

	created, err := s.storage.AdvanceRecurring(ctx, rt, next, active, occurrence)
	if err != nil {
		return core.Transaction{}, err
	}

	if s.txs != nil {
		s.txs.publishExport(ctx, created.ID, 1)
	}
	s.notify(rt.OwnerID)

	s.audit.LogRecurringFired(ctx, rt.ID, created.ID, rt.OwnerID,
		next.Format("2006-01-02"), active)
	return created, nil
}
