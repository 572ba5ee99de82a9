package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"painel/internal/cache"
	"painel/internal/config"
	"painel/internal/core"
	"painel/internal/ledger"
	"painel/internal/log"
	"painel/internal/reporting"
)

const snapshotKey = "bank_transactions"

// loadTimeout bounds a full-table read from the backend.
const loadTimeout = 15 * time.Second

var ErrNoReader = errors.New("transaction reader not configured")

// ReportService answers the dashboard views from a cached snapshot of the
// whole transaction table.
type ReportService struct {
	reader    ledger.TransactionReader
	rules     config.Rules
	snapshots *cache.LRUCache[[]core.Transaction]
	logger    *log.Logger
}

func NewReportService(reader ledger.TransactionReader, rules config.Rules, ttl time.Duration, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReportService{
		reader:    reader,
		rules:     rules,
		snapshots: cache.NewLRUCache[[]core.Transaction](1, ttl),
		logger:    logger.WithComponent(log.ComponentReporting),
	}
}

// Cache exposes the snapshot cache so it can be registered for cleanup.
func (s *ReportService) Cache() *cache.LRUCache[[]core.Transaction] {
	return s.snapshots
}

// Snapshot returns every stored transaction. A zero TTL disables caching.
func (s *ReportService) Snapshot(ctx context.Context) ([]core.Transaction, error) {
	if s.reader == nil {
		return nil, ErrNoReader
	}
	txs, err := s.snapshots.GetOrLoad(ctx, snapshotKey, s.load)
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *ReportService) load(ctx context.Context) ([]core.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	start := time.Now()
	txs, err := s.reader.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	s.logger.DebugContext(ctx, "Snapshot loaded",
		log.FieldRows, len(txs),
		log.FieldDuration, time.Since(start).Milliseconds())
	return txs, nil
}

// Invalidate drops the cached snapshot; the next view reloads it.
func (s *ReportService) Invalidate(ctx context.Context, reason string) {
	n := s.snapshots.Purge()
	s.logger.InfoContext(ctx, "Snapshot invalidated",
		log.FieldOperation, log.OpInvalidate,
		"reason", reason,
		"entries", n)
}

// Years lists the years present in the ledger.
func (s *ReportService) Years(ctx context.Context) ([]int, error) {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.Years(txs), nil
}

// inRange loads the snapshot restricted to a year range. Open ends default
// to the first and last year present.
func (s *ReportService) inRange(ctx context.Context, r core.YearRange) ([]core.Transaction, core.YearRange, error) {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return nil, r, err
	}
	if years := reporting.Years(txs); len(years) > 0 {
		if r.Start == 0 {
			r.Start = years[0]
		}
		if r.End == 0 {
			r.End = years[len(years)-1]
		}
	}
	return reporting.FilterYears(txs, r), r, nil
}

// Overview feeds the general tab: payroll cost and profit per month.
type Overview struct {
	Range  core.YearRange
	Salary []reporting.MonthValue
	Profit []reporting.MonthValue
	Totals reporting.Summary
}

func (s *ReportService) Overview(ctx context.Context, r core.YearRange) (Overview, error) {
	txs, r, err := s.inRange(ctx, r)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		Range:  r,
		Salary: reporting.SalaryExpenses(txs, s.rules.Salary.Matches),
		Profit: reporting.MonthlyProfit(txs),
		Totals: reporting.Totals(txs),
	}, nil
}

// Comparison holds the most recent periods of one kind. It always covers
// the whole ledger, not the selected year range.
type Comparison struct {
	Kind core.PeriodKind
	Rows []reporting.PeriodRow
}

func (s *ReportService) Comparison(ctx context.Context, kind core.PeriodKind, limit int) (Comparison, error) {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return Comparison{}, err
	}
	rows, err := reporting.AggregateByPeriod(txs, kind)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{Kind: kind, Rows: reporting.TakePeriods(rows, limit)}, nil
}

// Flows feeds the credit/debit tab.
type Flows struct {
	Range     core.YearRange
	Monthly   []reporting.MonthFlow
	Profit    []reporting.MonthValue
	ByAccount []reporting.DimensionRow
	Totals    reporting.Summary
}

func (s *ReportService) Flows(ctx context.Context, r core.YearRange) (Flows, error) {
	txs, r, err := s.inRange(ctx, r)
	if err != nil {
		return Flows{}, err
	}
	byAccount, err := reporting.AggregateByDimension(txs, reporting.ByAccount)
	if err != nil {
		return Flows{}, err
	}
	return Flows{
		Range:     r,
		Monthly:   reporting.MonthlyFlows(txs),
		Profit:    reporting.MonthlyProfit(txs),
		ByAccount: byAccount,
		Totals:    reporting.Totals(txs),
	}, nil
}

// Accounts feeds the accounts tab. Account and SubAccount echo the
// selection actually used: an empty or unknown choice falls back to the
// first available option.
type Accounts struct {
	Range           core.YearRange
	Accounts        []string
	SubAccounts     []string
	Account         string
	SubAccount      string
	ByYearAccount   []reporting.DimensionRow
	ByYearSub       []reporting.DimensionRow
	SubAccountsYear []reporting.DimensionRow
}

func (s *ReportService) Accounts(ctx context.Context, r core.YearRange, account, subAccount string) (Accounts, error) {
	txs, r, err := s.inRange(ctx, r)
	if err != nil {
		return Accounts{}, err
	}

	out := Accounts{
		Range:           r,
		Accounts:        reporting.Distinct(txs, func(t core.Transaction) string { return t.Account }),
		SubAccounts:     []string{},
		ByYearAccount:   []reporting.DimensionRow{},
		ByYearSub:       []reporting.DimensionRow{},
		SubAccountsYear: []reporting.DimensionRow{},
	}
	out.Account = pick(out.Accounts, account)
	if out.Account == "" {
		return out, nil
	}

	accountTxs := reporting.FilterAccount(txs, out.Account)
	out.SubAccounts = reporting.Distinct(accountTxs, func(t core.Transaction) string { return t.SubAccount })
	out.SubAccountsYear = reporting.YearlySubAccountBreakdown(txs, out.Account)
	out.SubAccount = pick(out.SubAccounts, subAccount)
	if out.SubAccount == "" {
		return out, nil
	}

	subTxs := reporting.FilterSubAccount(accountTxs, out.SubAccount)
	if out.ByYearAccount, err = reporting.AggregateByDimension(subTxs, reporting.ByYearAccount); err != nil {
		return Accounts{}, err
	}
	if out.ByYearSub, err = reporting.AggregateByDimension(subTxs, reporting.ByYearSubAccount); err != nil {
		return Accounts{}, err
	}
	return out, nil
}

// pick returns the option matching want (case and space insensitive),
// or the first option.
func pick(options []string, want string) string {
	for _, o := range options {
		if core.SameKey(o, want) {
			return o
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

// Suppliers runs the profitability report with the configured rule.
func (s *ReportService) Suppliers(ctx context.Context, r core.YearRange) ([]reporting.SupplierRow, error) {
	txs, _, err := s.inRange(ctx, r)
	if err != nil {
		return nil, err
	}
	return reporting.SupplierProfitability(txs, s.rules.Suppliers), nil
}

// History is the filtered transaction table with its selectors and totals.
type History struct {
	Rows        []reporting.TableRow
	Totals      reporting.Summary
	Balance     decimal.Decimal
	Years       []int
	Banks       []string
	Accounts    []string
	SubAccounts []string
}

// History applies the filters in page order: period, then bank, account and
// sub-account, then the description search. Each selector lists the options
// left by the filters before it.
func (s *ReportService) History(ctx context.Context, f reporting.HistoryFilter) (History, error) {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return History{}, err
	}
	out := History{Years: reporting.Years(txs)}

	step := reporting.HistoryFilter{Year: f.Year, Month: f.Month}
	txs = step.Apply(txs)
	out.Banks = reporting.Distinct(txs, func(t core.Transaction) string { return t.Bank })

	txs = reporting.HistoryFilter{Bank: f.Bank}.Apply(txs)
	out.Accounts = reporting.Distinct(txs, func(t core.Transaction) string { return t.Account })

	txs = reporting.HistoryFilter{Account: f.Account}.Apply(txs)
	out.SubAccounts = reporting.Distinct(txs, func(t core.Transaction) string { return t.SubAccount })

	txs = reporting.HistoryFilter{SubAccount: f.SubAccount, Query: f.Query}.Apply(txs)

	out.Rows = reporting.BuildTable(txs)
	out.Totals = reporting.Totals(txs)
	balances := make([]decimal.NullDecimal, len(txs))
	for i, t := range txs {
		balances[i] = t.Balance
	}
	out.Balance = core.SumBalances(balances)
	return out, nil
}

// BankReport feeds the per-bank page.
type BankReport struct {
	From   time.Time
	To     time.Time
	Banks  []string
	Bank   string
	Flows  []reporting.BankFlow
	Daily  []reporting.DailyFlow
	Totals reporting.Summary
}

// Banks restricts the ledger to [from, to] (zero ends open, defaulting to
// the first and last day present) and breaks it down by bank.
func (s *ReportService) Banks(ctx context.Context, from, to time.Time, bank string) (BankReport, error) {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return BankReport{}, err
	}
	first, last := dayBounds(txs)
	if from.IsZero() {
		from = first
	}
	if to.IsZero() {
		to = last
	}

	txs = reporting.FilterDays(txs, from, to)
	out := BankReport{
		From:   from,
		To:     to,
		Banks:  reporting.Distinct(txs, func(t core.Transaction) string { return t.Bank }),
		Flows:  reporting.BankFlows(txs),
		Totals: reporting.Totals(txs),
	}
	out.Bank = pick(out.Banks, bank)
	out.Daily = reporting.DailyFlows(txs, out.Bank)
	return out, nil
}

func dayBounds(txs []core.Transaction) (first, last time.Time) {
	for i, t := range txs {
		d := t.Day()
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	return first, last
}

// Trend sums one value column per bank over months or years.
func (s *ReportService) Trend(ctx context.Context, v reporting.ValueColumn, granularity core.PeriodKind) ([]reporting.TrendRow, error) {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.BankTrend(txs, v, granularity)
}
