package core

// CurrencyAggregate holds per-currency totals over one user's accounts, as
// produced by the storage layer.
type CurrencyAggregate struct {
	Currency Currency
	Balance  Money // initial balances plus signed transaction amounts
	Income   Money
	Expense  Money
	Accounts int
}

// Summary is the headline dashboard figure. With mixed-currency accounts only
// the dominant currency's aggregates are reported; other currencies are
// excluded, never converted.
type Summary struct {
	Currency     Currency
	TotalBalance Money
	TotalIncome  Money
	TotalExpense Money
	Accounts     int
	Mixed        bool
}

// CategoryAmount is an amount aggregated by category.
type CategoryAmount struct {
	CategoryID int64
	Name       string
	Color      string
	Type       CategoryType
	Amount     Money
}

// MonthlyPoint is one month of the income/expense series.
type MonthlyPoint struct {
	Year    int
	Month   int // 1-12
	Income  Money
	Expense Money
}

// BuildSummary picks the dominant display currency, the one with the largest
// aggregate balance, and reports that currency's totals alone.
func BuildSummary(aggs []CurrencyAggregate) Summary {
	if len(aggs) == 0 {
		return Summary{}
	}
	dominant := aggs[0]
	for _, a := range aggs[1:] {
		if a.Balance.Cents > dominant.Balance.Cents {
			dominant = a
		}
	}
	return Summary{
		Currency:     dominant.Currency,
		TotalBalance: dominant.Balance,
		TotalIncome:  dominant.Income,
		TotalExpense: dominant.Expense,
		Accounts:     dominant.Accounts,
		Mixed:        len(aggs) > 1,
	}
}
