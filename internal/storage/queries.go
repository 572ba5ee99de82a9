package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// BankTransaction is a bank_transactions row as scanned.
type BankTransaction struct {
	ID        int64
	Data      any // time.Time, string or []byte depending on how the row was written
	Descricao sql.NullString
	Documento sql.NullString
	Credito   decimal.NullDecimal
	Debito    decimal.NullDecimal
	Saldo     any
	Banco     string
	Conta     sql.NullString
	Subconta  sql.NullString
	FilePath  sql.NullString
	Categoria sql.NullString
}

const listTransactions = `
SELECT id, data, descricao, documento, credito, debito, saldo, banco, conta, subconta, file_path, categoria
FROM bank_transactions
ORDER BY id
`

func (q *Queries) ListTransactions(ctx context.Context) ([]BankTransaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BankTransaction{}
	for rows.Next() {
		var i BankTransaction
		if err := rows.Scan(
			&i.ID,
			&i.Data,
			&i.Descricao,
			&i.Documento,
			&i.Credito,
			&i.Debito,
			&i.Saldo,
			&i.Banco,
			&i.Conta,
			&i.Subconta,
			&i.FilePath,
			&i.Categoria,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertTransaction = `
INSERT INTO bank_transactions (data, descricao, documento, credito, debito, saldo, banco, conta, subconta, file_path, categoria)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(NULLIF(?, ''), 'Outros'))
`

type InsertTransactionParams struct {
	Data      string
	Descricao string
	Documento string
	Credito   float64
	Debito    float64
	Saldo     string
	Banco     string
	Conta     string
	Subconta  string
	FilePath  string
	Categoria string
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertTransaction,
		arg.Data,
		arg.Descricao,
		arg.Documento,
		arg.Credito,
		arg.Debito,
		arg.Saldo,
		arg.Banco,
		arg.Conta,
		arg.Subconta,
		arg.FilePath,
		arg.Categoria,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const classifyByDescription = `
UPDATE bank_transactions
SET categoria = ?
WHERE descricao LIKE '%' || ? || '%'
`

func (q *Queries) ClassifyByDescription(ctx context.Context, categoria, pattern string) (int64, error) {
	result, err := q.db.ExecContext(ctx, classifyByDescription, categoria, pattern)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countTransactions = `SELECT COUNT(*) FROM bank_transactions`

func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactions)
	var count int64
	err := row.Scan(&count)
	return count, err
}
