package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

const recurringColumns = `id, user_id, account_id, category_id, name, amount_cents, currency, type,
	description, frequency, start_date, end_date, next_due_date, is_active, created_at`

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_transactions
		 (user_id, account_id, category_id, name, amount_cents, currency, type, description, frequency, start_date, end_date, next_due_date, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.OwnerID, rt.AccountID, nullInt(rt.CategoryID), rt.Name, rt.Amount.Cents, string(rt.Currency),
		string(rt.Type), rt.Description, string(rt.Frequency), rt.StartDate.Format(dateLayout),
		nullDate(rt.EndDate), rt.NextDueDate.Format(dateLayout), rt.IsActive)
	if err != nil {
		return core.RecurringTransaction{}, translateErr(err, "recurring transaction")
	}
	rt.ID, err = res.LastInsertId()
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("recurring id: %w", err)
	}
	return rt, nil
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, ownerID, id int64) (core.RecurringTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ? AND user_id = ?`, id, ownerID)
	return scanRecurring(row)
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context, ownerID int64) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE user_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, translateErr(err, "recurring transactions")
	}
	defer rows.Close()
	return collectRecurring(rows)
}

// ListDueRecurring returns active schedules, across all users, whose next due
// date is on or before asOf. The sweep worker feeds on this.
func (r *SQLiteRepository) ListDueRecurring(ctx context.Context, asOf core.Date) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions
		 WHERE is_active = 1 AND next_due_date <= ? ORDER BY next_due_date, id`,
		asOf.Format(dateLayout))
	if err != nil {
		return nil, translateErr(err, "due recurring transactions")
	}
	defer rows.Close()
	return collectRecurring(rows)
}

func (r *SQLiteRepository) UpdateRecurring(ctx context.Context, rt core.RecurringTransaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_transactions SET account_id = ?, category_id = ?, name = ?, amount_cents = ?,
		 currency = ?, type = ?, description = ?, frequency = ?, start_date = ?, end_date = ?,
		 next_due_date = ?, is_active = ?
		 WHERE id = ? AND user_id = ?`,
		rt.AccountID, nullInt(rt.CategoryID), rt.Name, rt.Amount.Cents, string(rt.Currency),
		string(rt.Type), rt.Description, string(rt.Frequency), rt.StartDate.Format(dateLayout),
		nullDate(rt.EndDate), rt.NextDueDate.Format(dateLayout), rt.IsActive, rt.ID, rt.OwnerID)
	if err != nil {
		return translateErr(err, "recurring transaction")
	}
	return requireRow(res, "recurring transaction")
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recurring_transactions WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return translateErr(err, "recurring transaction")
	}
	return requireRow(res, "recurring transaction")
}

// AdvanceRecurring fires one occurrence: it moves the schedule's next due date
// forward (deactivating it when the end date is crossed) and inserts the
// produced transaction in the same database transaction.
//
// The UPDATE is guarded on the schedule's current next_due_date, so a
// concurrent sweep that already advanced it makes this call fail with
// ErrConflict instead of double-booking the occurrence.
func (r *SQLiteRepository) AdvanceRecurring(ctx context.Context, rt core.RecurringTransaction, next core.Date, active bool, t core.Transaction) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin advance: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE recurring_transactions SET next_due_date = ?, is_active = ?
		 WHERE id = ? AND is_active = 1 AND next_due_date = ?`,
		next.Format(dateLayout), active, rt.ID, rt.NextDueDate.Format(dateLayout))
	if err != nil {
		return core.Transaction{}, translateErr(err, "recurring transaction")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("advance rows affected: %w", err)
	}
	if n == 0 {
		return core.Transaction{}, fmt.Errorf("%w: schedule %d already advanced past %s",
			core.ErrConflict, rt.ID, rt.NextDueDate.Format(dateLayout))
	}

	ins, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, account_id, category_id, amount_cents, currency, type, description, date, transfer_id, recurring_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.AccountID, nullInt(t.CategoryID), t.Amount.Cents, string(t.Currency),
		string(t.Type), t.Description, t.Date.Format(dateLayout), nullStr(t.TransferID), nullInt(t.RecurringID))
	if err != nil {
		return core.Transaction{}, translateErr(err, "recurring occurrence")
	}
	t.ID, err = ins.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("occurrence id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit advance: %w", err)
	}
	return t, nil
}

func collectRecurring(rows *sql.Rows) ([]core.RecurringTransaction, error) {
	var out []core.RecurringTransaction
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func scanRecurring(row rowScanner) (core.RecurringTransaction, error) {
	var rt core.RecurringTransaction
	var cur, typ, freq, start, next string
	var end sql.NullString
	var categoryID sql.NullInt64

	err := row.Scan(&rt.ID, &rt.OwnerID, &rt.AccountID, &categoryID, &rt.Name, &rt.Amount.Cents,
		&cur, &typ, &rt.Description, &freq, &start, &end, &next, &rt.IsActive, &rt.CreatedAt)
	if err != nil {
		return core.RecurringTransaction{}, translateErr(err, "recurring transaction")
	}

	rt.Currency = core.Currency(cur)
	rt.Type = core.TransactionType(typ)
	rt.Frequency = core.Frequency(freq)
	if categoryID.Valid {
		rt.CategoryID = &categoryID.Int64
	}
	if rt.StartDate, err = parseDate(start); err != nil {
		return core.RecurringTransaction{}, err
	}
	if rt.NextDueDate, err = parseDate(next); err != nil {
		return core.RecurringTransaction{}, err
	}
	if end.Valid && end.String != "" {
		if rt.EndDate, err = parseDate(end.String); err != nil {
			return core.RecurringTransaction{}, err
		}
	}
	return rt, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}

func nullDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Format(dateLayout)
}
