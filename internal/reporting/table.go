package reporting

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

// TableColumns is the column order of the transaction table.
var TableColumns = []string{
	"data", "descricao", "documento", "debito", "credito",
	"valor", "saldo", "banco", "conta", "subconta",
}

// TableRow is a display-ready ledger line.
type TableRow struct {
	Date        time.Time
	Description string
	Document    string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Amount      decimal.Decimal
	Balance     decimal.NullDecimal
	Bank        string
	Account     string
	SubAccount  string
}

// BuildTable projects txs onto TableColumns, dates truncated to the day,
// sorted by date. Lines on the same day keep their input order.
func BuildTable(txs []core.Transaction) []TableRow {
	rows := make([]TableRow, len(txs))
	for i, t := range txs {
		rows[i] = TableRow{
			Date:        t.Day(),
			Description: t.Description,
			Document:    t.Document,
			Debit:       t.Debit,
			Credit:      t.Credit,
			Amount:      t.Amount(),
			Balance:     t.Balance,
			Bank:        t.Bank,
			Account:     t.Account,
			SubAccount:  t.SubAccount,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

// HistoryFilter narrows the ledger for the history page. Zero fields do
// not filter.
type HistoryFilter struct {
	Year       int
	Month      int // only applied together with Year
	Bank       string
	Account    string
	SubAccount string
	Query      string // case-insensitive substring of the description
}

// Apply returns the lines that pass every set field.
func (f HistoryFilter) Apply(txs []core.Transaction) []core.Transaction {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	return filter(txs, func(t core.Transaction) bool {
		if f.Year != 0 {
			if t.Date.Year() != f.Year {
				return false
			}
			if f.Month != 0 && int(t.Date.Month()) != f.Month {
				return false
			}
		}
		if f.Bank != "" && t.Bank != f.Bank {
			return false
		}
		if f.Account != "" && t.Account != f.Account {
			return false
		}
		if f.SubAccount != "" && !core.SameKey(t.SubAccount, f.SubAccount) {
			return false
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Description), query) {
			return false
		}
		return true
	})
}

// Distinct lists the distinct non-empty values of a text column, sorted.
// It feeds the history page selectors.
func Distinct(txs []core.Transaction, column func(core.Transaction) string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, t := range txs {
		v := column(t)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
