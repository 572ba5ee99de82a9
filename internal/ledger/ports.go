package ledger

import (
	"context"

	"painel/internal/core"
)

// Ports for the transaction sources.
type (
	// TransactionReader returns the whole ledger. Sources do not filter;
	// reports narrow the snapshot in memory.
	TransactionReader interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// TransactionWriter is implemented by the sources the importer can fill.
	TransactionWriter interface {
		// InsertTransactions appends all rows or none of them.
		InsertTransactions(ctx context.Context, txs []core.Transaction) (int, error)
		// Classify sets category on the rows whose description contains any
		// of the patterns and reports how many rows changed.
		Classify(ctx context.Context, category string, patterns []string) (int64, error)
	}

	// Counter is an optional cheap liveness check of a source.
	Counter interface {
		Count(ctx context.Context) (int64, error)
	}
)
