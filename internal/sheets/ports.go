package sheets

import (
	"context"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionAppender writes one transaction to an external ledger, such
	// as a Google Sheets spreadsheet, and returns an adapter-specific row
	// reference.
	TransactionAppender interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)
