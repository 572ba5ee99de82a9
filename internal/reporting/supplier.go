package reporting

import (
	"sort"

	"github.com/shopspring/decimal"

	"painel/internal/config"
	"painel/internal/core"
)

var hundred = decimal.NewFromInt(100)

// SupplierRow is the profitability of one supplier.
type SupplierRow struct {
	Supplier      string
	Revenue       decimal.Decimal // Receita
	Expense       decimal.Decimal // Despesa
	Profitability decimal.Decimal // Rentabilidade
	Share         string          // "12.34%"
}

// SupplierProfitability ranks the allow-listed suppliers by net result.
//
// Only lines booked on the revenue or expense account count. The supplier
// is the sub-account, matched against the allow-list ignoring case and
// surrounding whitespace and reported under its allow-list spelling (or its
// alias). Revenue lines add their credit, expense lines subtract their
// debit. Share is each supplier's part of the summed profitability; a zero
// sum gives "0.00%" everywhere.
func SupplierProfitability(txs []core.Transaction, rule config.SupplierRule) []SupplierRow {
	canonical := make(map[string]string, len(rule.AllowList))
	for _, name := range rule.AllowList {
		canonical[core.NormalizeKey(name)] = name
	}

	index := make(map[string]int)
	rows := make([]SupplierRow, 0)
	for _, t := range txs {
		revenue := core.SameKey(t.Account, rule.RevenueAccount)
		expense := core.SameKey(t.Account, rule.ExpenseAccount)
		if !revenue && !expense {
			continue
		}
		name, ok := canonical[core.NormalizeKey(t.SubAccount)]
		if !ok {
			continue
		}
		if alias, ok := rule.Aliases[name]; ok {
			name = alias
		}

		impact := decimal.Zero
		switch {
		case revenue:
			impact = t.Credit
		case expense:
			impact = t.Debit.Neg()
		}

		i, ok := index[name]
		if !ok {
			i = len(rows)
			index[name] = i
			rows = append(rows, SupplierRow{
				Supplier:      name,
				Revenue:       decimal.Zero,
				Expense:       decimal.Zero,
				Profitability: decimal.Zero,
			})
		}
		rows[i].Revenue = rows[i].Revenue.Add(t.Credit)
		rows[i].Expense = rows[i].Expense.Add(t.Debit)
		rows[i].Profitability = rows[i].Profitability.Add(impact)
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Profitability)
	}
	for i := range rows {
		share := decimal.Zero
		if !total.IsZero() {
			share = rows[i].Profitability.Div(total).Mul(hundred)
		}
		rows[i].Share = share.StringFixed(2) + "%"
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Profitability.GreaterThan(rows[j].Profitability)
	})
	return rows
}
