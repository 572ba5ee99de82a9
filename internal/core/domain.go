package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Transaction is one line of a bank statement as stored in bank_transactions.
	Transaction struct {
		ID          int64
		Date        time.Time
		Description string
		Document    string // optional
		Credit      decimal.Decimal
		Debit       decimal.Decimal
		Balance     decimal.NullDecimal // Valid=false when the source text did not parse
		RawBalance  string              // saldo exactly as stored
		Bank        string
		Account     string // conta
		SubAccount  string // subconta
		SourceFile  string // optional
		Category    string // optional, filled by classification
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrNegativeAmount   = errors.New("credit and debit must not be negative")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyBank        = errors.New("empty bank")
)

// NewDate creates a midnight UTC date from year, month, day.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// DateLayouts are the date formats found in statement exports and in the store.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
}

// ParseDate tries every layout in DateLayouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Amount is the signed value of the line: credit minus debit.
func (t Transaction) Amount() decimal.Decimal {
	return t.Credit.Sub(t.Debit)
}

// Day returns the transaction date with the time of day discarded.
func (t Transaction) Day() time.Time {
	return TruncateDay(t.Date)
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Credit.IsNegative() || t.Debit.IsNegative() {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(t.Bank) == "" {
		return ErrEmptyBank
	}
	return nil
}

// NormalizeKey prepares free text for tolerant comparisons: trimmed and lowercased.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameKey reports whether a and b are equal once both are normalized.
func SameKey(a, b string) bool {
	return NormalizeKey(a) == NormalizeKey(b)
}
