package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

// PendingExport carries the minimal identity the export queue needs; the
// worker re-reads the full row before appending so it always exports the
// latest version.
type PendingExport struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// PendingExports returns transactions not yet written to the spreadsheet,
// oldest first.
func (r *SQLiteRepository) PendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM transactions
		 WHERE export_status = 'pending'
		 ORDER BY created_at, id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, translateErr(err, "pending exports")
	}
	defer rows.Close()

	var out []PendingExport
	for rows.Next() {
		var p PendingExport
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetTransactionForExport fetches a transaction regardless of owner; the
// export worker runs outside any user session.
func (r *SQLiteRepository) GetTransactionForExport(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_status = 'exported' WHERE id = ?`, id)
	if err != nil {
		return translateErr(err, "transaction")
	}
	return requireRow(res, "transaction")
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return translateErr(err, "transaction")
	}
	return requireRow(res, "transaction")
}
