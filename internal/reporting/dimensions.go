package reporting

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

// Dimension names a grouping key for AggregateByDimension.
type Dimension string

const (
	ByBank           Dimension = "bank"
	ByAccount        Dimension = "account"
	BySubAccount     Dimension = "subaccount"
	ByYearAccount    Dimension = "year_account"
	ByYearSubAccount Dimension = "year_subaccount"
	ByYearMonthBank  Dimension = "year_month_bank"
	ByYearBank       Dimension = "year_bank"
)

// GroupKey holds the columns of a dimension. Columns the dimension does not
// use stay at their zero value.
type GroupKey struct {
	Year       int
	Month      int
	Bank       string
	Account    string
	SubAccount string
}

// DimensionRow is one group of AggregateByDimension.
type DimensionRow struct {
	Key    GroupKey
	Credit decimal.Decimal
	Debit  decimal.Decimal
	Profit decimal.Decimal
}

func keyFunc(dim Dimension) (func(core.Transaction) GroupKey, error) {
	switch dim {
	case ByBank:
		return func(t core.Transaction) GroupKey { return GroupKey{Bank: t.Bank} }, nil
	case ByAccount:
		return func(t core.Transaction) GroupKey { return GroupKey{Account: t.Account} }, nil
	case BySubAccount:
		return func(t core.Transaction) GroupKey { return GroupKey{SubAccount: t.SubAccount} }, nil
	case ByYearAccount:
		return func(t core.Transaction) GroupKey {
			return GroupKey{Year: t.Date.Year(), Account: t.Account}
		}, nil
	case ByYearSubAccount:
		return func(t core.Transaction) GroupKey {
			return GroupKey{Year: t.Date.Year(), SubAccount: t.SubAccount}
		}, nil
	case ByYearMonthBank:
		return func(t core.Transaction) GroupKey {
			return GroupKey{Year: t.Date.Year(), Month: int(t.Date.Month()), Bank: t.Bank}
		}, nil
	case ByYearBank:
		return func(t core.Transaction) GroupKey {
			return GroupKey{Year: t.Date.Year(), Bank: t.Bank}
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
}

// AggregateByDimension sums credit and debit per group. Keys compare as
// exact text; rows come back ordered by year, month, bank, account and
// sub-account.
func AggregateByDimension(txs []core.Transaction, dim Dimension) ([]DimensionRow, error) {
	key, err := keyFunc(dim)
	if err != nil {
		return nil, err
	}

	index := make(map[GroupKey]int)
	rows := make([]DimensionRow, 0)
	for _, t := range txs {
		k := key(t)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, DimensionRow{Key: k, Credit: decimal.Zero, Debit: decimal.Zero})
		}
		rows[i].Credit = rows[i].Credit.Add(t.Credit)
		rows[i].Debit = rows[i].Debit.Add(t.Debit)
	}
	for i := range rows {
		rows[i].Profit = rows[i].Credit.Sub(rows[i].Debit)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return lessKey(rows[i].Key, rows[j].Key)
	})
	return rows, nil
}

func lessKey(a, b GroupKey) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	if a.Bank != b.Bank {
		return a.Bank < b.Bank
	}
	if a.Account != b.Account {
		return a.Account < b.Account
	}
	return a.SubAccount < b.SubAccount
}

// FilterSubAccount keeps the lines whose sub-account matches target,
// ignoring case and surrounding whitespace.
func FilterSubAccount(txs []core.Transaction, target string) []core.Transaction {
	return filter(txs, func(t core.Transaction) bool { return core.SameKey(t.SubAccount, target) })
}

// FilterAccount is FilterSubAccount for the account column.
func FilterAccount(txs []core.Transaction, target string) []core.Transaction {
	return filter(txs, func(t core.Transaction) bool { return core.SameKey(t.Account, target) })
}

// FilterYears keeps the lines dated inside r.
func FilterYears(txs []core.Transaction, r core.YearRange) []core.Transaction {
	return filter(txs, func(t core.Transaction) bool { return r.Contains(t.Date.Year()) })
}

// FilterDays keeps the lines dated between from and to, both days included.
// A zero bound is open.
func FilterDays(txs []core.Transaction, from, to time.Time) []core.Transaction {
	from, to = core.TruncateDay(from), core.TruncateDay(to)
	return filter(txs, func(t core.Transaction) bool {
		d := t.Day()
		if !from.IsZero() && d.Before(from) {
			return false
		}
		if !to.IsZero() && d.After(to) {
			return false
		}
		return true
	})
}

// YearlySubAccountBreakdown groups the lines of one account by year and sub-account.
func YearlySubAccountBreakdown(txs []core.Transaction, account string) []DimensionRow {
	rows, _ := AggregateByDimension(FilterAccount(txs, account), ByYearSubAccount)
	return rows
}

// ValueColumn picks which side of a flow a summary reports.
type ValueColumn string

const (
	ValueCredit ValueColumn = "credito"
	ValueDebit  ValueColumn = "debito"
)

// ParseValueColumn validates a value column name.
func ParseValueColumn(s string) (ValueColumn, error) {
	switch v := ValueColumn(s); v {
	case ValueCredit, ValueDebit:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownValue, s)
	}
}

func (v ValueColumn) of(credit, debit decimal.Decimal) decimal.Decimal {
	if v == ValueDebit {
		return debit
	}
	return credit
}

// YearValue is a single measure for one year.
type YearValue struct {
	Year  int
	Value decimal.Decimal
}

// YearlySummary sums the chosen column per year, ascending.
func YearlySummary(txs []core.Transaction, v ValueColumn) []YearValue {
	index := make(map[int]int)
	out := make([]YearValue, 0)
	for _, t := range txs {
		y := t.Date.Year()
		i, ok := index[y]
		if !ok {
			i = len(out)
			index[y] = i
			out = append(out, YearValue{Year: y, Value: decimal.Zero})
		}
		out[i].Value = out[i].Value.Add(v.of(t.Credit, t.Debit))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// MonthlySummary sums the chosen column per month, oldest first.
func MonthlySummary(txs []core.Transaction, v ValueColumn) []MonthValue {
	return monthly(txs, func(f core.Flow) decimal.Decimal { return v.of(f.Credit, f.Debit) })
}

// TrendRow is a point of the per-bank line charts.
type TrendRow struct {
	Year  int
	Month int // zero for yearly trends
	Bank  string
	Value decimal.Decimal
}

// BankTrend sums the chosen column per bank by month or by year.
func BankTrend(txs []core.Transaction, v ValueColumn, granularity core.PeriodKind) ([]TrendRow, error) {
	var dim Dimension
	switch granularity {
	case core.Month:
		dim = ByYearMonthBank
	case core.Year:
		dim = ByYearBank
	default:
		return nil, fmt.Errorf("%w: %q has no bank trend", ErrUnknownPeriod, granularity)
	}
	rows, err := AggregateByDimension(txs, dim)
	if err != nil {
		return nil, err
	}
	out := make([]TrendRow, len(rows))
	for i, r := range rows {
		out[i] = TrendRow{Year: r.Key.Year, Month: r.Key.Month, Bank: r.Key.Bank, Value: v.of(r.Credit, r.Debit)}
	}
	return out, nil
}

// FlowKind labels the side of a long-form flow row.
type FlowKind string

const (
	FlowCredit FlowKind = "credito"
	FlowDebit  FlowKind = "debito"
)

// BankFlow is one long-form row of the per-bank bar chart.
type BankFlow struct {
	Bank  string
	Kind  FlowKind
	Value decimal.Decimal
}

// BankFlows returns the credit rows of every bank followed by the debit rows.
func BankFlows(txs []core.Transaction) []BankFlow {
	rows, _ := AggregateByDimension(txs, ByBank)
	out := make([]BankFlow, 0, 2*len(rows))
	for _, r := range rows {
		out = append(out, BankFlow{Bank: r.Key.Bank, Kind: FlowCredit, Value: r.Credit})
	}
	for _, r := range rows {
		out = append(out, BankFlow{Bank: r.Key.Bank, Kind: FlowDebit, Value: r.Debit})
	}
	return out
}

// DailyFlow is one long-form row of the daily chart of a bank.
type DailyFlow struct {
	Date  time.Time
	Kind  FlowKind
	Value decimal.Decimal
}

// DailyFlows returns per-day credit rows then debit rows for one bank.
func DailyFlows(txs []core.Transaction, bank string) []DailyFlow {
	index := make(map[time.Time]int)
	var days []time.Time
	var flows []core.Flow
	for _, t := range txs {
		if t.Bank != bank {
			continue
		}
		d := t.Day()
		i, ok := index[d]
		if !ok {
			i = len(days)
			index[d] = i
			days = append(days, d)
			flows = append(flows, core.Flow{Credit: decimal.Zero, Debit: decimal.Zero})
		}
		flows[i] = flows[i].Add(t)
	}

	order := make([]int, len(days))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return days[order[a]].Before(days[order[b]]) })

	out := make([]DailyFlow, 0, 2*len(days))
	for _, o := range order {
		out = append(out, DailyFlow{Date: days[o], Kind: FlowCredit, Value: flows[o].Credit})
	}
	for _, o := range order {
		out = append(out, DailyFlow{Date: days[o], Kind: FlowDebit, Value: flows[o].Debit})
	}
	return out
}
