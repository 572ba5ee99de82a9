// Package core provides the ledger domain types and the pure helpers the
// reporting layer builds on.
//
// This file contains the parsing of locale formatted amounts as they come out
// of Brazilian bank statements ("1.234,56") and the formatting used when
// values are shown to people.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLocaleDecimal converts a pt-BR formatted number into a decimal.
//
// The thousands separator is removed first, then the decimal comma becomes a
// dot, and only then the string is parsed. Anything that does not parse
// afterwards yields an invalid NullDecimal: the value is missing, not zero.
//
// Examples:
//
//	ParseLocaleDecimal("1.234,56") -> 1234.56
//	ParseLocaleDecimal("-10,5")    -> -10.5
//	ParseLocaleDecimal("abc")      -> missing
func ParseLocaleDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// NormalizeBalances maps ParseLocaleDecimal over raw balance strings.
// The result always has the same length as the input.
func NormalizeBalances(raw []string) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(raw))
	for i, s := range raw {
		out[i] = ParseLocaleDecimal(s)
	}
	return out
}

// ParseAmount reads a credit or debit cell. Empty cells are zero; plain
// decimals ("100.5") and locale decimals ("1.000,50") are both accepted.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	if !strings.Contains(s, ",") {
		if d, err := decimal.NewFromString(s); err == nil {
			return d, true
		}
	}
	nd := ParseLocaleDecimal(s)
	if !nd.Valid {
		return decimal.Zero, false
	}
	return nd.Decimal, true
}

// SumBalances adds the valid balances and skips the missing ones.
func SumBalances(values []decimal.NullDecimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		if v.Valid {
			total = total.Add(v.Decimal)
		}
	}
	return total
}

// FormatReais renders a value as "R$ 1.234,56" rounded to two places.
func FormatReais(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
