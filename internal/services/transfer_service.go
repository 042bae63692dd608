package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/log"
	"github.com/Zigorr/Wallet-Fullstack/internal/rates"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

// TransferRequest describes a transfer between two of the caller's accounts.
type TransferRequest struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        core.Money
	// ConvertedAmount, when set, overrides the rate table for cross-currency
	// transfers.
	ConvertedAmount *core.Money
	Description     string
	Date            core.Date
}

// Transfer is the result handed back to the API: the two booked legs and the
// conversion arithmetic that produced them.
type Transfer struct {
	ID              string
	Out             core.Transaction
	In              core.Transaction
	ExchangeRate    float64
	ConvertedAmount core.Money
}

// TransferService books money movements between accounts as an atomic pair of
// EXPENSE and INCOME rows sharing a transfer ID.
type TransferService struct {
	storage  *storage.SQLiteRepository
	rates    rates.Provider
	txs      *TransactionService
	audit    *log.StructuredLogger
	onChange func(ownerID int64)
}

func NewTransferService(storage *storage.SQLiteRepository, provider rates.Provider, txs *TransactionService) *TransferService {
	return &TransferService{
		storage: storage,
		rates:   provider,
		txs:     txs,
		audit:   log.NewStructuredLogger(log.Default(log.ComponentTransfer)),
	}
}

func (s *TransferService) OnChange(fn func(ownerID int64)) {
	s.onChange = fn
}

func (s *TransferService) Transfer(ctx context.Context, ownerID int64, req TransferRequest) (Transfer, error) {
	if req.FromAccountID == req.ToAccountID {
		return Transfer{}, fmt.Errorf("%w: source and destination accounts must differ", core.ErrValidation)
	}
	if err := req.Amount.Validate(); err != nil {
		return Transfer{}, err
	}

	from, err := s.storage.GetAccount(ctx, ownerID, req.FromAccountID)
	if err != nil {
		return Transfer{}, err
	}
	to, err := s.storage.GetAccount(ctx, ownerID, req.ToAccountID)
	if err != nil {
		return Transfer{}, err
	}

	quote, err := core.QuoteTransfer(req.Amount, from.Currency, to.Currency, req.ConvertedAmount, s.rates.Rates())
	if err != nil {
		return Transfer{}, err
	}

	date := req.Date
	if date.IsZero() {
		date = core.DateOf(time.Now())
	}

	transferID := uuid.NewString()
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Transfer from %s to %s", from.Name, to.Name)
	}

	out := core.Transaction{
		Amount:      req.Amount,
		Type:        core.TransactionExpense,
		Description: description,
		Date:        date.Time,
		Currency:    from.Currency,
		AccountID:   from.ID,
		OwnerID:     ownerID,
		TransferID:  transferID,
	}
	in := core.Transaction{
		Amount:      quote.Converted,
		Type:        core.TransactionIncome,
		Description: description,
		Date:        date.Time,
		Currency:    to.Currency,
		AccountID:   to.ID,
		OwnerID:     ownerID,
		TransferID:  transferID,
	}

	out, in, err = s.storage.CreateTransferPair(ctx, out, in)
	if err != nil {
		return Transfer{}, err
	}

	s.audit.LogTransferBooked(ctx, transferID, out.ID, in.ID, ownerID, quote.Rate)
	if s.txs != nil {
		s.txs.publishExport(ctx, out.ID, 1)
		s.txs.publishExport(ctx, in.ID, 1)
	}
	if s.onChange != nil {
		s.onChange(ownerID)
	}

	return Transfer{
		ID:              transferID,
		Out:             out,
		In:              in,
		ExchangeRate:    quote.Rate,
		ConvertedAmount: quote.Converted,
	}, nil
}
