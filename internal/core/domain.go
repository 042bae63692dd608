package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	CurrencyUSD Currency = "USD"
	CurrencyEGP Currency = "EGP"
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
)

const (
	AccountChecking   AccountType = "CHECKING"
	AccountSavings    AccountType = "SAVINGS"
	AccountCredit     AccountType = "CREDIT"
	AccountDebit      AccountType = "DEBIT"
	AccountInvestment AccountType = "INVESTMENT"
	AccountCash       AccountType = "CASH"
)

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

const (
	TransactionIncome   TransactionType = "INCOME"
	TransactionExpense  TransactionType = "EXPENSE"
	TransactionTransfer TransactionType = "TRANSFER"
)

const (
	Daily     Frequency = "DAILY"
	Weekly    Frequency = "WEEKLY"
	Monthly   Frequency = "MONTHLY"
	Quarterly Frequency = "QUARTERLY"
	Yearly    Frequency = "YEARLY"
)

type (
	Currency        string
	AccountType     string
	CategoryType    string
	TransactionType string
	Frequency       string

	// Date is a calendar day without a time component. It marshals as
	// YYYY-MM-DD on the wire.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID              int64
		Email           string
		Username        string
		PasswordHash    string
		DefaultCurrency Currency
	}

	Account struct {
		ID             int64
		Name           string
		Type           AccountType
		Currency       Currency
		InitialBalance Money
		OwnerID        int64
	}

	Category struct {
		ID      int64
		Name    string
		Type    CategoryType
		Color   string
		OwnerID int64
	}

	Transaction struct {
		ID          int64
		Amount      Money // positive magnitude; Type encodes direction
		Type        TransactionType
		Description string
		Date        time.Time
		Currency    Currency
		AccountID   int64
		CategoryID  *int64
		OwnerID     int64
		RecurringID *int64
		TransferID  string // uuid shared by the two legs of a transfer
	}

	RecurringTransaction struct {
		ID          int64
		Name        string
		Amount      Money
		Type        TransactionType
		Description string
		Currency    Currency
		Frequency   Frequency
		StartDate   Date
		EndDate     Date // zero when open-ended
		NextDueDate Date
		IsActive    bool
		CreatedAt   time.Time
		AccountID   int64
		CategoryID  *int64
		OwnerID     int64
	}
)

var (
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidCurrency = fmt.Errorf("%w: unsupported currency", ErrValidation)
	ErrEmptyName       = fmt.Errorf("%w: name cannot be empty", ErrValidation)
	ErrDirectTransfer  = fmt.Errorf("%w: TRANSFER transactions are created via the transfer operation", ErrValidation)
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEGP, CurrencyGBP, CurrencyEUR:
		return true
	}
	return false
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCredit, AccountDebit, AccountInvestment, AccountCash:
		return true
	}
	return false
}

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("%w: invalid date %q (want YYYY-MM-DD)", ErrValidation, s)
	}
	d.Time = t
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return fmt.Errorf("%w: account name too long (max 100 characters)", ErrValidation)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", ErrValidation, a.Type)
	}
	if !a.Currency.Valid() {
		return ErrInvalidCurrency
	}
	// Initial balance may legitimately be zero or negative (credit accounts).
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("%w: category name too long (max 100 characters)", ErrValidation)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: unknown category type %q", ErrValidation, c.Type)
	}
	return nil
}

// Validate checks a transaction created by direct user action. The transfer
// operation and the recurring engine build their rows internally and bypass
// the TRANSFER restriction.
func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrValidation, t.Type)
	}
	if t.Type == TransactionTransfer {
		return ErrDirectTransfer
	}
	if len(t.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	if !t.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if t.AccountID == 0 {
		return fmt.Errorf("%w: account_id is required", ErrValidation)
	}
	return nil
}

func (rt RecurringTransaction) Validate() error {
	if strings.TrimSpace(rt.Name) == "" {
		return ErrEmptyName
	}
	if err := rt.Amount.Validate(); err != nil {
		return err
	}
	if rt.Type != TransactionIncome && rt.Type != TransactionExpense {
		return fmt.Errorf("%w: recurring type must be INCOME or EXPENSE", ErrValidation)
	}
	if len(rt.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	if !rt.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if !rt.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrValidation, rt.Frequency)
	}
	if rt.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", ErrValidation)
	}
	if !rt.EndDate.IsZero() && rt.EndDate.Before(rt.StartDate.Time) {
		return fmt.Errorf("%w: end_date must not precede start_date", ErrValidation)
	}
	if rt.AccountID == 0 {
		return fmt.Errorf("%w: account_id is required", ErrValidation)
	}
	return nil
}

// SignedCents returns the balance contribution of a transaction: income adds,
// everything else subtracts.
func (t Transaction) SignedCents() int64 {
	if t.Type == TransactionIncome {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}
