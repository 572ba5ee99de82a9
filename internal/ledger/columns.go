package ledger

import (
	"errors"
	"fmt"
	"strings"

	"painel/internal/core"
)

// Column names of processed statement files and of the ledger sheet.
const (
	ColDate        = "DATA"
	ColDescription = "DESCRICAO"
	ColDocument    = "DOCUMENTO"
	ColCredit      = "CREDITO"
	ColDebit       = "DEBITO"
	ColBalance     = "SALDO"
	ColBank        = "BANCO"
	ColAccount     = "CONTA"
	ColSubAccount  = "SUBCONTA"
	ColFilePath    = "FILE_PATH"
	ColCategory    = "CATEGORIA"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrInvalidAmount = errors.New("invalid amount")
)

var requiredColumns = []string{ColDate, ColBank}

// Header maps column names to their position in a record.
type Header struct {
	index map[string]int
}

// NewHeader reads a header row. Names are matched ignoring case and
// surrounding whitespace; DATA and BANCO must be present.
func NewHeader(names []string) (Header, error) {
	h := Header{index: make(map[string]int, len(names))}
	for i, name := range names {
		name = strings.TrimPrefix(name, "\ufeff")
		key := strings.ToUpper(strings.TrimSpace(name))
		if _, dup := h.index[key]; !dup {
			h.index[key] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := h.index[col]; !ok {
			return Header{}, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return h, nil
}

// Has reports whether the header carries col.
func (h Header) Has(col string) bool {
	_, ok := h.index[col]
	return ok
}

func (h Header) get(record []string, col string) string {
	i, ok := h.index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// Decode turns one record into a transaction. The balance text is kept as
// found and also parsed as a locale number.
func (h Header) Decode(record []string) (core.Transaction, error) {
	date, err := core.ParseDate(h.get(record, ColDate))
	if err != nil {
		return core.Transaction{}, err
	}
	credit, ok := core.ParseAmount(h.get(record, ColCredit))
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: %s %q", ErrInvalidAmount, ColCredit, h.get(record, ColCredit))
	}
	debit, ok := core.ParseAmount(h.get(record, ColDebit))
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: %s %q", ErrInvalidAmount, ColDebit, h.get(record, ColDebit))
	}
	if credit.IsNegative() || debit.IsNegative() {
		return core.Transaction{}, core.ErrNegativeAmount
	}
	bank := h.get(record, ColBank)
	if bank == "" {
		return core.Transaction{}, core.ErrEmptyBank
	}

	raw := h.get(record, ColBalance)
	return core.Transaction{
		Date:        date,
		Description: h.get(record, ColDescription),
		Document:    h.get(record, ColDocument),
		Credit:      credit,
		Debit:       debit,
		Balance:     core.ParseLocaleDecimal(raw),
		RawBalance:  raw,
		Bank:        bank,
		Account:     h.get(record, ColAccount),
		SubAccount:  h.get(record, ColSubAccount),
		SourceFile:  h.get(record, ColFilePath),
		Category:    h.get(record, ColCategory),
	}, nil
}

// Blank reports whether every cell of record is empty.
func Blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
