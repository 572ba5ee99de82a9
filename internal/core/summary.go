package core

import "github.com/shopspring/decimal"

// Flow is the pair of sums every report starts from.
type Flow struct {
	Credit decimal.Decimal
	Debit  decimal.Decimal
}

// Add accumulates one transaction into the flow.
func (f Flow) Add(t Transaction) Flow {
	return Flow{Credit: f.Credit.Add(t.Credit), Debit: f.Debit.Add(t.Debit)}
}

// Net is credit minus debit (lucro / saldo of a group).
func (f Flow) Net() decimal.Decimal {
	return f.Credit.Sub(f.Debit)
}

// YearRange bounds a report by calendar year, both ends inclusive.
// A zero value on either end leaves that side open.
type YearRange struct {
	Start int
	End   int
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	if r.Start != 0 && year < r.Start {
		return false
	}
	if r.End != 0 && year > r.End {
		return false
	}
	return true
}
