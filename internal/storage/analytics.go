package storage

import (
	"context"
	"fmt"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

// CurrencyAggregates sums balances, income and expense per currency for one
// user. Each currency is aggregated independently; nothing is converted.
func (r *SQLiteRepository) CurrencyAggregates(ctx context.Context, ownerID int64) ([]core.CurrencyAggregate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.currency,
		        COUNT(*),
		        SUM(a.initial_balance_cents),
		        COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
		                  JOIN accounts ta ON ta.id = t.account_id
		                  WHERE t.user_id = a.user_id AND ta.currency = a.currency AND t.type = 'INCOME'), 0),
		        COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
		                  JOIN accounts ta ON ta.id = t.account_id
		                  WHERE t.user_id = a.user_id AND ta.currency = a.currency AND t.type != 'INCOME'), 0)
		 FROM accounts a
		 WHERE a.user_id = ?
		 GROUP BY a.currency
		 ORDER BY a.currency`, ownerID)
	if err != nil {
		return nil, translateErr(err, "currency aggregates")
	}
	defer rows.Close()

	var out []core.CurrencyAggregate
	for rows.Next() {
		var agg core.CurrencyAggregate
		var cur string
		var initial int64
		if err := rows.Scan(&cur, &agg.Accounts, &initial, &agg.Income.Cents, &agg.Expense.Cents); err != nil {
			return nil, fmt.Errorf("scan currency aggregate: %w", err)
		}
		agg.Currency = core.Currency(cur)
		agg.Balance.Cents = initial + agg.Income.Cents - agg.Expense.Cents
		out = append(out, agg)
	}
	return out, rows.Err()
}

// CategoryBreakdown sums transaction amounts per category for the given type
// and date range. Uncategorized transactions are bucketed under category 0.
func (r *SQLiteRepository) CategoryBreakdown(ctx context.Context, ownerID int64, typ core.TransactionType, from, to core.Date) ([]core.CategoryAmount, error) {
	query := `SELECT COALESCE(c.id, 0), COALESCE(c.name, 'Uncategorized'), COALESCE(c.color, ''), SUM(t.amount_cents)
	          FROM transactions t
	          LEFT JOIN categories c ON c.id = t.category_id
	          WHERE t.user_id = ? AND t.type = ?`
	args := []any{ownerID, string(typ)}

	if !from.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, from.Format(dateLayout))
	}
	if !to.IsZero() {
		query += ` AND t.date <= ?`
		args = append(args, to.Format(dateLayout))
	}
	query += ` GROUP BY c.id ORDER BY SUM(t.amount_cents) DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err, "category breakdown")
	}
	defer rows.Close()

	ctype := core.CategoryExpense
	if typ == core.TransactionIncome {
		ctype = core.CategoryIncome
	}

	var out []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.CategoryID, &ca.Name, &ca.Color, &ca.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category breakdown: %w", err)
		}
		ca.Type = ctype
		out = append(out, ca)
	}
	return out, rows.Err()
}

// MonthlySeries returns per-month income and expense totals for dates on or
// after from, oldest month first.
func (r *SQLiteRepository) MonthlySeries(ctx context.Context, ownerID int64, from core.Date) ([]core.MonthlyPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT CAST(substr(date, 1, 4) AS INTEGER),
		        CAST(substr(date, 6, 2) AS INTEGER),
		        COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount_cents ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN type != 'INCOME' THEN amount_cents ELSE 0 END), 0)
		 FROM transactions
		 WHERE user_id = ? AND date >= ?
		 GROUP BY substr(date, 1, 7)
		 ORDER BY substr(date, 1, 7)`,
		ownerID, from.Format(dateLayout))
	if err != nil {
		return nil, translateErr(err, "monthly series")
	}
	defer rows.Close()

	var out []core.MonthlyPoint
	for rows.Next() {
		var p core.MonthlyPoint
		if err := rows.Scan(&p.Year, &p.Month, &p.Income.Cents, &p.Expense.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
