package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Zigorr/Wallet-Fullstack/internal/amqp"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/log"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

// TransactionService orchestrates transaction writes: validation, ownership
// checks, persistence and the async export publish.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	audit      *log.StructuredLogger
	onChange   func(ownerID int64)
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
		audit:      log.NewStructuredLogger(log.Default(log.ComponentTransaction)),
	}
}

// OnChange registers a hook invoked after any write, keyed by owner. The
// dashboard cache hangs off this.
func (s *TransactionService) OnChange(fn func(ownerID int64)) {
	s.onChange = fn
}

func (s *TransactionService) notify(ownerID int64) {
	if s.onChange != nil {
		s.onChange(ownerID)
	}
}

// Create validates and saves a transaction, then publishes an export message.
// A broker failure never fails the request; the export processor sweeps up
// anything the queue missed.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	account, err := s.storage.GetAccount(ctx, t.OwnerID, t.AccountID)
	if err != nil {
		return core.Transaction{}, err
	}
	// The row records the account's currency; callers cannot book a EUR
	// amount against a USD account.
	if t.Currency != account.Currency {
		return core.Transaction{}, fmt.Errorf("%w: transaction currency %s does not match account currency %s",
			core.ErrValidation, t.Currency, account.Currency)
	}

	if t.CategoryID != nil {
		category, err := s.storage.GetCategory(ctx, t.OwnerID, *t.CategoryID)
		if err != nil {
			return core.Transaction{}, err
		}
		if !categoryMatches(category.Type, t.Type) {
			return core.Transaction{}, fmt.Errorf("%w: category %q is %s, transaction is %s",
				core.ErrValidation, category.Name, category.Type, t.Type)
		}
	}

	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.audit.LogTransactionCreated(ctx, created.ID, created.AccountID,
		created.Amount.Cents, string(created.Currency), created.OwnerID)
	s.publishExport(ctx, created.ID, 1)
	s.notify(created.OwnerID)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, ownerID, id)
}

func (s *TransactionService) List(ctx context.Context, ownerID int64, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, ownerID, f)
}

// Update rewrites a transaction. Transfer legs are immutable; delete the
// transfer and book a new one instead.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	existing, err := s.storage.GetTransaction(ctx, t.OwnerID, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	if existing.TransferID != "" {
		return core.Transaction{}, fmt.Errorf("%w: transfer legs cannot be edited", core.ErrValidation)
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	account, err := s.storage.GetAccount(ctx, t.OwnerID, t.AccountID)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.Currency != account.Currency {
		return core.Transaction{}, fmt.Errorf("%w: transaction currency %s does not match account currency %s",
			core.ErrValidation, t.Currency, account.Currency)
	}
	if t.CategoryID != nil {
		category, err := s.storage.GetCategory(ctx, t.OwnerID, *t.CategoryID)
		if err != nil {
			return core.Transaction{}, err
		}
		if !categoryMatches(category.Type, t.Type) {
			return core.Transaction{}, fmt.Errorf("%w: category %q is %s, transaction is %s",
				core.ErrValidation, category.Name, category.Type, t.Type)
		}
	}

	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.storage.GetTransaction(ctx, t.OwnerID, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publishExport(ctx, updated.ID, 0)
	s.notify(updated.OwnerID)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, ownerID, id); err != nil {
		return err
	}
	s.notify(ownerID)
	return nil
}

func (s *TransactionService) publishExport(ctx context.Context, id, version int64) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishTransactionExport(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"transaction_id", id, "error", err)
	}
}

func categoryMatches(ct core.CategoryType, tt core.TransactionType) bool {
	switch tt {
	case core.TransactionIncome:
		return ct == core.CategoryIncome
	case core.TransactionExpense:
		return ct == core.CategoryExpense
	}
	return false
}
