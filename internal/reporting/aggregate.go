// Package reporting turns a ledger snapshot into the summary rows the
// dashboard draws. Every function is pure: the input slice is read, never
// reordered or modified, and results are freshly allocated.
package reporting

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

// RecencyWindow is how many periods the comparison views keep.
const RecencyWindow = 3

var (
	ErrUnknownPeriod    = errors.New("unknown period")
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrUnknownValue     = errors.New("unknown value column")
)

// PeriodRow is one bucket of AggregateByPeriod.
type PeriodRow struct {
	Period  core.Bucket
	Credit  decimal.Decimal
	Debit   decimal.Decimal
	Balance decimal.Decimal // Credit - Debit
}

// AggregateByPeriod sums credit and debit per week, month or year and
// returns the RecencyWindow most recent buckets, newest first.
func AggregateByPeriod(txs []core.Transaction, kind core.PeriodKind) ([]PeriodRow, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPeriod, kind)
	}

	index := make(map[string]int)
	rows := make([]PeriodRow, 0)
	for _, t := range txs {
		bucket, err := core.BucketOf(t.Date, kind)
		if err != nil {
			return nil, err
		}
		i, ok := index[bucket.Label]
		if !ok {
			i = len(rows)
			index[bucket.Label] = i
			rows = append(rows, PeriodRow{Period: bucket, Credit: decimal.Zero, Debit: decimal.Zero})
		}
		rows[i].Credit = rows[i].Credit.Add(t.Credit)
		rows[i].Debit = rows[i].Debit.Add(t.Debit)
	}

	for i := range rows {
		rows[i].Balance = rows[i].Credit.Sub(rows[i].Debit)
	}
	// Bucket labels are unique, so no two rows tie.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Period.Start.After(rows[j].Period.Start)
	})

	return TakePeriods(rows, RecencyWindow), nil
}

// TakePeriods keeps the first n rows, with n clamped to [1, RecencyWindow].
func TakePeriods(rows []PeriodRow, n int) []PeriodRow {
	if n < 1 {
		n = 1
	}
	if n > RecencyWindow {
		n = RecencyWindow
	}
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]PeriodRow, n)
	copy(out, rows[:n])
	return out
}

// MonthValue is a single measure for one month, labelled "YYYY-MM".
type MonthValue struct {
	Month time.Time
	Label string
	Value decimal.Decimal
}

// MonthlyProfit returns credit minus debit per month, oldest first.
func MonthlyProfit(txs []core.Transaction) []MonthValue {
	return monthly(txs, func(f core.Flow) decimal.Decimal { return f.Net() })
}

// SalaryExpenses sums the debit of the lines matched by isSalary per month.
func SalaryExpenses(txs []core.Transaction, isSalary func(core.Transaction) bool) []MonthValue {
	return monthly(filter(txs, isSalary), func(f core.Flow) decimal.Decimal { return f.Debit })
}

// MonthFlow carries both sides of one month.
type MonthFlow struct {
	Month  time.Time
	Label  string
	Credit decimal.Decimal
	Debit  decimal.Decimal
}

// MonthlyFlows returns credit and debit per month, oldest first.
func MonthlyFlows(txs []core.Transaction) []MonthFlow {
	months, flows := groupMonths(txs)
	out := make([]MonthFlow, len(months))
	for i, m := range months {
		out[i] = MonthFlow{Month: m, Label: core.MonthLabel(m), Credit: flows[i].Credit, Debit: flows[i].Debit}
	}
	return out
}

func monthly(txs []core.Transaction, measure func(core.Flow) decimal.Decimal) []MonthValue {
	months, flows := groupMonths(txs)
	out := make([]MonthValue, len(months))
	for i, m := range months {
		out[i] = MonthValue{Month: m, Label: core.MonthLabel(m), Value: measure(flows[i])}
	}
	return out
}

// groupMonths returns month starts in ascending order with their flows.
func groupMonths(txs []core.Transaction) ([]time.Time, []core.Flow) {
	index := make(map[string]int)
	var months []time.Time
	var flows []core.Flow
	for _, t := range txs {
		label := core.MonthLabel(t.Date)
		i, ok := index[label]
		if !ok {
			i = len(months)
			index[label] = i
			months = append(months, core.MonthStart(t.Date))
			flows = append(flows, core.Flow{Credit: decimal.Zero, Debit: decimal.Zero})
		}
		flows[i] = flows[i].Add(t)
	}

	order := make([]int, len(months))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return months[order[a]].Before(months[order[b]])
	})

	sortedMonths := make([]time.Time, len(order))
	sortedFlows := make([]core.Flow, len(order))
	for i, o := range order {
		sortedMonths[i] = months[o]
		sortedFlows[i] = flows[o]
	}
	return sortedMonths, sortedFlows
}

// Summary is the credit, debit and profit of a whole row set.
type Summary struct {
	Credit decimal.Decimal
	Debit  decimal.Decimal
	Profit decimal.Decimal
}

// Totals sums a row set.
func Totals(txs []core.Transaction) Summary {
	f := core.Flow{Credit: decimal.Zero, Debit: decimal.Zero}
	for _, t := range txs {
		f = f.Add(t)
	}
	return Summary{Credit: f.Credit, Debit: f.Debit, Profit: f.Net()}
}

// Years lists the distinct years present, ascending.
func Years(txs []core.Transaction) []int {
	seen := make(map[int]bool)
	years := make([]int, 0)
	for _, t := range txs {
		y := t.Date.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

func filter(txs []core.Transaction, keep func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, t := range txs {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
