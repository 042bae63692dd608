package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// translateErr maps driver-level failures onto the domain sentinels so callers
// can use errors.Is without knowing about SQLite.
func translateErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %s", core.ErrNotFound, what)
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s already exists", core.ErrConflict, what)
	case strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %s references a missing row", core.ErrValidation, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, default_currency) VALUES (?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, string(u.DefaultCurrency))
	if err != nil {
		return core.User{}, translateErr(err, "user")
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, default_currency FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, default_currency FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var cur string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &cur); err != nil {
		return core.User{}, translateErr(err, "user")
	}
	u.DefaultCurrency = core.Currency(cur)
	return u, nil
}

// --- accounts ---

// AccountWithBalance pairs an account with its current balance: the initial
// balance plus the signed sum of its transactions.
type AccountWithBalance struct {
	core.Account
	Balance core.Money
}

const accountColumns = `a.id, a.user_id, a.name, a.type, a.currency, a.initial_balance_cents,
	a.initial_balance_cents + COALESCE((
		SELECT SUM(CASE WHEN t.type = 'INCOME' THEN t.amount_cents ELSE -t.amount_cents END)
		FROM transactions t WHERE t.account_id = a.id
	), 0) AS balance_cents`

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name, type, currency, initial_balance_cents) VALUES (?, ?, ?, ?, ?)`,
		a.OwnerID, a.Name, string(a.Type), string(a.Currency), a.InitialBalance.Cents)
	if err != nil {
		return core.Account{}, translateErr(err, "account")
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, ownerID, id int64) (AccountWithBalance, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts a WHERE a.id = ? AND a.user_id = ?`, id, ownerID)
	return scanAccount(row)
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, ownerID int64) ([]AccountWithBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts a WHERE a.user_id = ? ORDER BY a.id`, ownerID)
	if err != nil {
		return nil, translateErr(err, "accounts")
	}
	defer rows.Close()

	var out []AccountWithBalance
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, initial_balance_cents = ? WHERE id = ? AND user_id = ?`,
		a.Name, string(a.Type), a.InitialBalance.Cents, a.ID, a.OwnerID)
	if err != nil {
		return translateErr(err, "account")
	}
	return requireRow(res, "account")
}

// DeleteAccount refuses to remove an account that still has transactions;
// the bookkeeping must stay reconstructible.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, ownerID, id int64) error {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, id).Scan(&n)
	if err != nil {
		return translateErr(err, "account")
	}
	if n > 0 {
		return fmt.Errorf("%w: account has %d transactions", core.ErrConflict, n)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return translateErr(err, "account")
	}
	return requireRow(res, "account")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (AccountWithBalance, error) {
	var a AccountWithBalance
	var typ, cur string
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &typ, &cur, &a.InitialBalance.Cents, &a.Balance.Cents)
	if err != nil {
		return AccountWithBalance{}, translateErr(err, "account")
	}
	a.Type = core.AccountType(typ)
	a.Currency = core.Currency(cur)
	return a, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, what)
	}
	return nil
}

// --- categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, type, color) VALUES (?, ?, ?, ?)`,
		c.OwnerID, c.Name, string(c.Type), c.Color)
	if err != nil {
		return core.Category{}, translateErr(err, "category")
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, ownerID, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, color FROM categories WHERE id = ? AND user_id = ?`, id, ownerID)
	return scanCategory(row)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, color FROM categories WHERE user_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, translateErr(err, "categories")
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, color = ? WHERE id = ? AND user_id = ?`,
		c.Name, string(c.Type), c.Color, c.ID, c.OwnerID)
	if err != nil {
		return translateErr(err, "category")
	}
	return requireRow(res, "category")
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return translateErr(err, "category")
	}
	return requireRow(res, "category")
}

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	var typ string
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &typ, &c.Color); err != nil {
		return core.Category{}, translateErr(err, "category")
	}
	c.Type = core.CategoryType(typ)
	return c, nil
}

// --- transactions ---

const transactionColumns = `id, user_id, account_id, category_id, amount_cents, currency, type,
	description, date, transfer_id, recurring_id`

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	AccountID  int64
	CategoryID int64
	Type       core.TransactionType
	From       core.Date
	To         core.Date
	Limit      int
	Offset     int
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, account_id, category_id, amount_cents, currency, type, description, date, transfer_id, recurring_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.AccountID, nullInt(t.CategoryID), t.Amount.Cents, string(t.Currency),
		string(t.Type), t.Description, t.Date.Format(dateLayout), nullStr(t.TransferID), nullInt(t.RecurringID))
	if err != nil {
		return core.Transaction{}, translateErr(err, "transaction")
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	return t, nil
}

// CreateTransferPair inserts the two legs of a transfer atomically.
func (r *SQLiteRepository) CreateTransferPair(ctx context.Context, out, in core.Transaction) (core.Transaction, core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, core.Transaction{}, fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback()

	insert := func(t *core.Transaction) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (user_id, account_id, category_id, amount_cents, currency, type, description, date, transfer_id, recurring_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.OwnerID, t.AccountID, nullInt(t.CategoryID), t.Amount.Cents, string(t.Currency),
			string(t.Type), t.Description, t.Date.Format(dateLayout), nullStr(t.TransferID), nullInt(t.RecurringID))
		if err != nil {
			return translateErr(err, "transfer leg")
		}
		t.ID, err = res.LastInsertId()
		return err
	}

	if err := insert(&out); err != nil {
		return core.Transaction{}, core.Transaction{}, err
	}
	if err := insert(&in); err != nil {
		return core.Transaction{}, core.Transaction{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, core.Transaction{}, fmt.Errorf("commit transfer: %w", err)
	}
	return out, in, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID)
	return scanTransaction(row)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID int64, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []any{ownerID}

	if f.AccountID != 0 {
		query += ` AND account_id = ?`
		args = append(args, f.AccountID)
	}
	if f.CategoryID != 0 {
		query += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.To.Format(dateLayout))
	}
	query += ` ORDER BY date DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err, "transactions")
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET account_id = ?, category_id = ?, amount_cents = ?, currency = ?, type = ?,
		 description = ?, date = ?, export_status = 'pending', version = version + 1
		 WHERE id = ? AND user_id = ?`,
		t.AccountID, nullInt(t.CategoryID), t.Amount.Cents, string(t.Currency), string(t.Type),
		t.Description, t.Date.Format(dateLayout), t.ID, t.OwnerID)
	if err != nil {
		return translateErr(err, "transaction")
	}
	return requireRow(res, "transaction")
}

// DeleteTransaction removes a transaction. Deleting one leg of a transfer
// removes the paired leg as well, so balances stay consistent.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var transferID sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT transfer_id FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID).Scan(&transferID)
	if err != nil {
		return translateErr(err, "transaction")
	}

	if transferID.Valid && transferID.String != "" {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM transactions WHERE transfer_id = ? AND user_id = ?`, transferID.String, ownerID)
	} else {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID)
	}
	if err != nil {
		return translateErr(err, "transaction")
	}
	return tx.Commit()
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var cur, typ, date string
	var categoryID, recurringID sql.NullInt64
	var transferID sql.NullString

	err := row.Scan(&t.ID, &t.OwnerID, &t.AccountID, &categoryID, &t.Amount.Cents, &cur, &typ,
		&t.Description, &date, &transferID, &recurringID)
	if err != nil {
		return core.Transaction{}, translateErr(err, "transaction")
	}

	t.Currency = core.Currency(cur)
	t.Type = core.TransactionType(typ)
	if t.Date, err = time.Parse(dateLayout, date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	if recurringID.Valid {
		t.RecurringID = &recurringID.Int64
	}
	t.TransferID = transferID.String
	return t, nil
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
