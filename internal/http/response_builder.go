package http

import (
	"time"

	"github.com/shopspring/decimal"

	"painel/internal/core"
	"painel/internal/reporting"
	"painel/internal/services"
)

// money renders as a JSON number with exactly two decimals.
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

// nullMoney is money that may be missing (a malformed balance).
type nullMoney decimal.NullDecimal

func (m nullMoney) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return money(m.Decimal).MarshalJSON()
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dayLayout)
}

type yearsResponse struct {
	Years []int `json:"years"`
}

type summaryJSON struct {
	Credit money `json:"credit"`
	Debit  money `json:"debit"`
	Profit money `json:"profit"`
}

func newSummary(s reporting.Summary) summaryJSON {
	return summaryJSON{Credit: money(s.Credit), Debit: money(s.Debit), Profit: money(s.Profit)}
}

type monthValueJSON struct {
	Month string `json:"month"`
	Value money  `json:"value"`
}

func newMonthValues(in []reporting.MonthValue) []monthValueJSON {
	out := make([]monthValueJSON, 0, len(in))
	for _, v := range in {
		out = append(out, monthValueJSON{Month: v.Label, Value: money(v.Value)})
	}
	return out
}

type overviewResponse struct {
	StartYear int              `json:"start_year"`
	EndYear   int              `json:"end_year"`
	Salary    []monthValueJSON `json:"salary"`
	Profit    []monthValueJSON `json:"profit"`
	Totals    summaryJSON      `json:"totals"`
}

func newOverview(ov services.Overview) overviewResponse {
	return overviewResponse{
		StartYear: ov.Range.Start,
		EndYear:   ov.Range.End,
		Salary:    newMonthValues(ov.Salary),
		Profit:    newMonthValues(ov.Profit),
		Totals:    newSummary(ov.Totals),
	}
}

type periodRowJSON struct {
	Period  string `json:"period"`
	Start   string `json:"start"`
	Credit  money  `json:"credit"`
	Debit   money  `json:"debit"`
	Balance money  `json:"balance"`
}

type comparisonResponse struct {
	Period core.PeriodKind `json:"period"`
	Rows   []periodRowJSON `json:"rows"`
}

func newComparison(c services.Comparison) comparisonResponse {
	rows := make([]periodRowJSON, 0, len(c.Rows))
	for _, r := range c.Rows {
		rows = append(rows, periodRowJSON{
			Period:  r.Period.Label,
			Start:   day(r.Period.Start),
			Credit:  money(r.Credit),
			Debit:   money(r.Debit),
			Balance: money(r.Balance),
		})
	}
	return comparisonResponse{Period: c.Kind, Rows: rows}
}

type monthFlowJSON struct {
	Month  string `json:"month"`
	Credit money  `json:"credit"`
	Debit  money  `json:"debit"`
}

type dimensionRowJSON struct {
	Year       int    `json:"year,omitempty"`
	Month      int    `json:"month,omitempty"`
	Bank       string `json:"bank,omitempty"`
	Account    string `json:"account,omitempty"`
	SubAccount string `json:"subaccount,omitempty"`
	Credit     money  `json:"credit"`
	Debit      money  `json:"debit"`
	Profit     money  `json:"profit"`
}

func newDimensionRows(in []reporting.DimensionRow) []dimensionRowJSON {
	out := make([]dimensionRowJSON, 0, len(in))
	for _, r := range in {
		out = append(out, dimensionRowJSON{
			Year:       r.Key.Year,
			Month:      r.Key.Month,
			Bank:       r.Key.Bank,
			Account:    r.Key.Account,
			SubAccount: r.Key.SubAccount,
			Credit:     money(r.Credit),
			Debit:      money(r.Debit),
			Profit:     money(r.Profit),
		})
	}
	return out
}

type flowsResponse struct {
	StartYear int                `json:"start_year"`
	EndYear   int                `json:"end_year"`
	Monthly   []monthFlowJSON    `json:"monthly"`
	Profit    []monthValueJSON   `json:"profit"`
	ByAccount []dimensionRowJSON `json:"by_account"`
	Totals    summaryJSON        `json:"totals"`
}

func newFlows(f services.Flows) flowsResponse {
	monthly := make([]monthFlowJSON, 0, len(f.Monthly))
	for _, m := range f.Monthly {
		monthly = append(monthly, monthFlowJSON{Month: m.Label, Credit: money(m.Credit), Debit: money(m.Debit)})
	}
	return flowsResponse{
		StartYear: f.Range.Start,
		EndYear:   f.Range.End,
		Monthly:   monthly,
		Profit:    newMonthValues(f.Profit),
		ByAccount: newDimensionRows(f.ByAccount),
		Totals:    newSummary(f.Totals),
	}
}

type accountsResponse struct {
	StartYear       int                `json:"start_year"`
	EndYear         int                `json:"end_year"`
	Accounts        []string           `json:"accounts"`
	SubAccounts     []string           `json:"subaccounts"`
	Account         string             `json:"account"`
	SubAccount      string             `json:"subaccount"`
	ByYearAccount   []dimensionRowJSON `json:"by_year_account"`
	ByYearSub       []dimensionRowJSON `json:"by_year_subaccount"`
	SubAccountsYear []dimensionRowJSON `json:"account_breakdown"`
}

func newAccounts(a services.Accounts) accountsResponse {
	return accountsResponse{
		StartYear:       a.Range.Start,
		EndYear:         a.Range.End,
		Accounts:        a.Accounts,
		SubAccounts:     a.SubAccounts,
		Account:         a.Account,
		SubAccount:      a.SubAccount,
		ByYearAccount:   newDimensionRows(a.ByYearAccount),
		ByYearSub:       newDimensionRows(a.ByYearSub),
		SubAccountsYear: newDimensionRows(a.SubAccountsYear),
	}
}

type supplierRowJSON struct {
	Supplier      string `json:"supplier"`
	Revenue       money  `json:"revenue"`
	Expense       money  `json:"expense"`
	Profitability money  `json:"profitability"`
	Share         string `json:"share"`
}

type suppliersResponse struct {
	Rows []supplierRowJSON `json:"rows"`
}

func newSuppliers(in []reporting.SupplierRow) suppliersResponse {
	rows := make([]supplierRowJSON, 0, len(in))
	for _, r := range in {
		rows = append(rows, supplierRowJSON{
			Supplier:      r.Supplier,
			Revenue:       money(r.Revenue),
			Expense:       money(r.Expense),
			Profitability: money(r.Profitability),
			Share:         r.Share,
		})
	}
	return suppliersResponse{Rows: rows}
}

// tableRowJSON keeps the ledger column names and order of the table view.
type tableRowJSON struct {
	Date        string    `json:"data"`
	Description string    `json:"descricao"`
	Document    string    `json:"documento"`
	Debit       money     `json:"debito"`
	Credit      money     `json:"credito"`
	Amount      money     `json:"valor"`
	Balance     nullMoney `json:"saldo"`
	Bank        string    `json:"banco"`
	Account     string    `json:"conta"`
	SubAccount  string    `json:"subconta"`
}

type historyResponse struct {
	Columns     []string       `json:"columns"`
	Rows        []tableRowJSON `json:"rows"`
	Totals      summaryJSON    `json:"totals"`
	Balance     money          `json:"balance"`
	Years       []int          `json:"years"`
	Banks       []string       `json:"banks"`
	Accounts    []string       `json:"accounts"`
	SubAccounts []string       `json:"subaccounts"`
}

func newHistory(h services.History) historyResponse {
	rows := make([]tableRowJSON, 0, len(h.Rows))
	for _, r := range h.Rows {
		rows = append(rows, tableRowJSON{
			Date:        day(r.Date),
			Description: r.Description,
			Document:    r.Document,
			Debit:       money(r.Debit),
			Credit:      money(r.Credit),
			Amount:      money(r.Amount),
			Balance:     nullMoney(r.Balance),
			Bank:        r.Bank,
			Account:     r.Account,
			SubAccount:  r.SubAccount,
		})
	}
	return historyResponse{
		Columns:     reporting.TableColumns,
		Rows:        rows,
		Totals:      newSummary(h.Totals),
		Balance:     money(h.Balance),
		Years:       h.Years,
		Banks:       h.Banks,
		Accounts:    h.Accounts,
		SubAccounts: h.SubAccounts,
	}
}

type bankFlowJSON struct {
	Bank  string             `json:"bank"`
	Kind  reporting.FlowKind `json:"kind"`
	Value money              `json:"value"`
}

type dailyFlowJSON struct {
	Date  string             `json:"date"`
	Kind  reporting.FlowKind `json:"kind"`
	Value money              `json:"value"`
}

type banksResponse struct {
	Start  string          `json:"start"`
	End    string          `json:"end"`
	Banks  []string        `json:"banks"`
	Bank   string          `json:"bank"`
	Flows  []bankFlowJSON  `json:"flows"`
	Daily  []dailyFlowJSON `json:"daily"`
	Totals summaryJSON     `json:"totals"`
}

func newBanks(b services.BankReport) banksResponse {
	flows := make([]bankFlowJSON, 0, len(b.Flows))
	for _, f := range b.Flows {
		flows = append(flows, bankFlowJSON{Bank: f.Bank, Kind: f.Kind, Value: money(f.Value)})
	}
	daily := make([]dailyFlowJSON, 0, len(b.Daily))
	for _, d := range b.Daily {
		daily = append(daily, dailyFlowJSON{Date: day(d.Date), Kind: d.Kind, Value: money(d.Value)})
	}
	return banksResponse{
		Start:  day(b.From),
		End:    day(b.To),
		Banks:  b.Banks,
		Bank:   b.Bank,
		Flows:  flows,
		Daily:  daily,
		Totals: newSummary(b.Totals),
	}
}

type trendRowJSON struct {
	Year  int    `json:"year"`
	Month int    `json:"month,omitempty"`
	Bank  string `json:"bank"`
	Value money  `json:"value"`
}

type trendResponse struct {
	Value       reporting.ValueColumn `json:"value"`
	Granularity core.PeriodKind       `json:"granularity"`
	Rows        []trendRowJSON        `json:"rows"`
}

func newTrend(v reporting.ValueColumn, g core.PeriodKind, in []reporting.TrendRow) trendResponse {
	rows := make([]trendRowJSON, 0, len(in))
	for _, r := range in {
		rows = append(rows, trendRowJSON{Year: r.Year, Month: r.Month, Bank: r.Bank, Value: money(r.Value)})
	}
	return trendResponse{Value: v, Granularity: g, Rows: rows}
}
