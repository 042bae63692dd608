package http

import (
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/services"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

// Amounts cross the wire as decimal units (150.75) and live internally as
// integer cents. Conversion happens here and nowhere else.

func toCents(amount float64) core.Money {
	return core.MoneyFromFloat(amount)
}

func toUnits(m core.Money) float64 {
	return m.Float64()
}

type userResponse struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	DefaultCurrency string `json:"default_currency"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		DefaultCurrency: string(u.DefaultCurrency),
	}
}

type accountRequest struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Currency       string  `json:"currency"`
	InitialBalance float64 `json:"initial_balance"`
}

type accountResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Currency       string  `json:"currency"`
	InitialBalance float64 `json:"initial_balance"`
	Balance        float64 `json:"balance"`
	UserID         int64   `json:"user_id"`
}

func toAccountResponse(a storage.AccountWithBalance) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           string(a.Type),
		Currency:       string(a.Currency),
		InitialBalance: toUnits(a.InitialBalance),
		Balance:        toUnits(a.Balance),
		UserID:         a.OwnerID,
	}
}

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

type categoryResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Color  string `json:"color"`
	UserID int64  `json:"user_id"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:     c.ID,
		Name:   c.Name,
		Type:   string(c.Type),
		Color:  c.Color,
		UserID: c.OwnerID,
	}
}

type transactionRequest struct {
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        core.Date `json:"date"`
	Currency    string    `json:"currency"`
	AccountID   int64     `json:"account_id"`
	CategoryID  *int64    `json:"category_id"`
}

type transactionResponse struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        core.Date `json:"date"`
	Currency    string    `json:"currency"`
	AccountID   int64     `json:"account_id"`
	CategoryID  *int64    `json:"category_id"`
	UserID      int64     `json:"user_id"`
	RecurringID *int64    `json:"recurring_transaction_id"`
	TransferID  string    `json:"transfer_id,omitempty"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      toUnits(t.Amount),
		Type:        string(t.Type),
		Description: t.Description,
		Date:        core.DateOf(t.Date),
		Currency:    string(t.Currency),
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
		UserID:      t.OwnerID,
		RecurringID: t.RecurringID,
		TransferID:  t.TransferID,
	}
}

type transferRequest struct {
	FromAccountID   int64     `json:"from_account_id"`
	ToAccountID     int64     `json:"to_account_id"`
	Amount          float64   `json:"amount"`
	ConvertedAmount *float64  `json:"converted_amount"`
	Description     string    `json:"description"`
	Date            core.Date `json:"date"`
}

type transferResponse struct {
	TransferID      string              `json:"transfer_id"`
	Expense         transactionResponse `json:"expense"`
	Income          transactionResponse `json:"income"`
	ExchangeRate    float64             `json:"exchange_rate"`
	ConvertedAmount float64             `json:"converted_amount"`
}

func toTransferResponse(tr services.Transfer) transferResponse {
	return transferResponse{
		TransferID:      tr.ID,
		Expense:         toTransactionResponse(tr.Out),
		Income:          toTransactionResponse(tr.In),
		ExchangeRate:    tr.ExchangeRate,
		ConvertedAmount: toUnits(tr.ConvertedAmount),
	}
}

type recurringRequest struct {
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Currency    string    `json:"currency"`
	Frequency   string    `json:"frequency"`
	StartDate   core.Date `json:"start_date"`
	EndDate     core.Date `json:"end_date"`
	AccountID   int64     `json:"account_id"`
	CategoryID  *int64    `json:"category_id"`
	IsActive    *bool     `json:"is_active"`
}

type recurringResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Currency    string    `json:"currency"`
	Frequency   string    `json:"frequency"`
	StartDate   core.Date `json:"start_date"`
	EndDate     core.Date `json:"end_date"`
	NextDueDate core.Date `json:"next_due_date"`
	IsActive    bool      `json:"is_active"`
	AccountID   int64     `json:"account_id"`
	CategoryID  *int64    `json:"category_id"`
	UserID      int64     `json:"user_id"`
}

func toRecurringResponse(rt core.RecurringTransaction) recurringResponse {
	return recurringResponse{
		ID:          rt.ID,
		Name:        rt.Name,
		Amount:      toUnits(rt.Amount),
		Type:        string(rt.Type),
		Description: rt.Description,
		Currency:    string(rt.Currency),
		Frequency:   string(rt.Frequency),
		StartDate:   rt.StartDate,
		EndDate:     rt.EndDate,
		NextDueDate: rt.NextDueDate,
		IsActive:    rt.IsActive,
		AccountID:   rt.AccountID,
		CategoryID:  rt.CategoryID,
		UserID:      rt.OwnerID,
	}
}

type currencyAggregateResponse struct {
	Currency string  `json:"currency"`
	Balance  float64 `json:"balance"`
	Income   float64 `json:"income"`
	Expense  float64 `json:"expense"`
	Accounts int     `json:"accounts"`
}

type summaryResponse struct {
	Currency     string                      `json:"currency"`
	TotalBalance float64                     `json:"total_balance"`
	TotalIncome  float64                     `json:"total_income"`
	TotalExpense float64                     `json:"total_expense"`
	Accounts     int                         `json:"accounts"`
	Mixed        bool                        `json:"mixed_currencies"`
	Currencies   []currencyAggregateResponse `json:"currencies"`
}

func toSummaryResponse(ov services.Overview) summaryResponse {
	out := summaryResponse{
		Currency:     string(ov.Summary.Currency),
		TotalBalance: toUnits(ov.Summary.TotalBalance),
		TotalIncome:  toUnits(ov.Summary.TotalIncome),
		TotalExpense: toUnits(ov.Summary.TotalExpense),
		Accounts:     ov.Summary.Accounts,
		Mixed:        ov.Summary.Mixed,
		Currencies:   []currencyAggregateResponse{},
	}
	for _, agg := range ov.Aggregates {
		out.Currencies = append(out.Currencies, currencyAggregateResponse{
			Currency: string(agg.Currency),
			Balance:  toUnits(agg.Balance),
			Income:   toUnits(agg.Income),
			Expense:  toUnits(agg.Expense),
			Accounts: agg.Accounts,
		})
	}
	return out
}

type monthlyPointResponse struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type categoryAmountResponse struct {
	CategoryID int64   `json:"category_id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Type       string  `json:"type"`
	Amount     float64 `json:"amount"`
}
