package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"painel/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListTransactions implements ledger.TransactionReader
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, len(rows))
	for i, row := range rows {
		t, err := toTransaction(row)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", row.ID, err)
		}
		txs[i] = t
	}
	return txs, nil
}

// InsertTransactions implements ledger.TransactionWriter. All rows are
// written in one transaction; nothing is stored if any insert fails.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	q := r.queries.WithTx(dbTx)
	for i, t := range txs {
		if _, err := q.InsertTransaction(ctx, toInsertParams(t)); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "rows", len(txs))
	return len(txs), nil
}

// Classify implements ledger.TransactionWriter. It sets categoria on every
// row whose description contains one of the patterns (SQL LIKE, so ASCII
// case is ignored) and returns how many rows were updated.
func (r *SQLiteRepository) Classify(ctx context.Context, category string, patterns []string) (int64, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	q := r.queries.WithTx(dbTx)
	var total int64
	for _, p := range patterns {
		n, err := q.ClassifyByDescription(ctx, category, p)
		if err != nil {
			return 0, fmt.Errorf("classify %q as %q: %w", p, category, err)
		}
		total += n
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transactions classified", "category", category, "rows", total)
	return total, nil
}

// Count returns the number of stored rows; the readiness probe uses it.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func toTransaction(row BankTransaction) (core.Transaction, error) {
	date, err := scanDate(row.Data)
	if err != nil {
		return core.Transaction{}, err
	}
	balance, raw := scanBalance(row.Saldo)
	return core.Transaction{
		ID:          row.ID,
		Date:        date,
		Description: row.Descricao.String,
		Document:    row.Documento.String,
		Credit:      orZero(row.Credito),
		Debit:       orZero(row.Debito),
		Balance:     balance,
		RawBalance:  raw,
		Bank:        row.Banco,
		Account:     row.Conta.String,
		SubAccount:  row.Subconta.String,
		SourceFile:  row.FilePath.String,
		Category:    row.Categoria.String,
	}, nil
}

func toInsertParams(t core.Transaction) InsertTransactionParams {
	return InsertTransactionParams{
		Data:      t.Date.Format("2006-01-02"),
		Descricao: t.Description,
		Documento: t.Document,
		Credito:   t.Credit.InexactFloat64(),
		Debito:    t.Debit.InexactFloat64(),
		Saldo:     t.RawBalance,
		Banco:     t.Bank,
		Conta:     t.Account,
		Subconta:  t.SubAccount,
		FilePath:  t.SourceFile,
		Categoria: t.Category,
	}
}

// scanDate accepts what the driver hands back for the data column: a
// time.Time for DATE values it recognised, text otherwise.
func scanDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		return core.ParseDate(d)
	case []byte:
		return core.ParseDate(string(d))
	default:
		return time.Time{}, fmt.Errorf("%w: unexpected %T", core.ErrInvalidDate, v)
	}
}

// scanBalance reads saldo. Text goes through the locale parser; numbers
// written by other tools are taken as they are.
func scanBalance(v any) (decimal.NullDecimal, string) {
	switch b := v.(type) {
	case nil:
		return decimal.NullDecimal{}, ""
	case int64:
		d := decimal.NewFromInt(b)
		return decimal.NullDecimal{Decimal: d, Valid: true}, d.String()
	case float64:
		d := decimal.NewFromFloat(b)
		return decimal.NullDecimal{Decimal: d, Valid: true}, d.String()
	case []byte:
		return core.ParseLocaleDecimal(string(b)), string(b)
	case string:
		return core.ParseLocaleDecimal(b), b
	default:
		raw := fmt.Sprint(b)
		return core.ParseLocaleDecimal(raw), raw
	}
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
