package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
)

func TestBuildTableAmountAndDay(t *testing.T) {
	line := tx(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), "100", "40")
	line.Balance = core.ParseLocaleDecimal("1.234,56")

	rows := BuildTable([]core.Transaction{line})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(dec("60")))
	assert.True(t, rows[0].Date.Equal(core.NewDate(2024, 3, 15)))
	assert.True(t, rows[0].Balance.Valid)
	assert.True(t, rows[0].Balance.Decimal.Equal(dec("1234.56")))
}

func TestBuildTableStableByDate(t *testing.T) {
	first := tx(time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC), "1", "0")
	first.Description = "first"
	second := tx(time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), "2", "0")
	second.Description = "second"
	earlier := tx(core.NewDate(2024, 1, 1), "3", "0")
	earlier.Description = "earlier"

	rows := BuildTable([]core.Transaction{first, second, earlier})
	got := []string{rows[0].Description, rows[1].Description, rows[2].Description}
	assert.Equal(t, []string{"earlier", "first", "second"}, got)
}

func TestTableColumnsOrder(t *testing.T) {
	assert.Equal(t, []string{
		"data", "descricao", "documento", "debito", "credito",
		"valor", "saldo", "banco", "conta", "subconta",
	}, TableColumns)
}

func TestHistoryFilter(t *testing.T) {
	txs := bankLedger()
	txs[0].Description = "PIX RECEBIDO PANASONIC"

	tests := []struct {
		name   string
		filter HistoryFilter
		want   int
	}{
		{"no filter", HistoryFilter{}, 4},
		{"year", HistoryFilter{Year: 2024}, 3},
		{"year and month", HistoryFilter{Year: 2024, Month: 7}, 1},
		{"month without year is ignored", HistoryFilter{Month: 7}, 4},
		{"bank", HistoryFilter{Bank: "Itaú"}, 3},
		{"account", HistoryFilter{Account: "Operacional"}, 1},
		{"sub-account normalized", HistoryFilter{SubAccount: "PANASONIC"}, 2},
		{"description query", HistoryFilter{Query: "pix recebido"}, 1},
		{"nothing matches", HistoryFilter{Bank: "Nubank"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(txs)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestDistinct(t *testing.T) {
	banks := Distinct(bankLedger(), func(t core.Transaction) string { return t.Bank })
	assert.Equal(t, []string{"Bradesco", "Itaú"}, banks)
}
