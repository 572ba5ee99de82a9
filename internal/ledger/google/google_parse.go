package google

import (
	"fmt"
	"strconv"

	"painel/internal/core"
	"painel/internal/ledger"
)

// parseValues converts a values matrix (as returned by the Sheets API) into
// transactions. The first row is the header; blank rows are skipped.
func parseValues(values [][]interface{}) ([]core.Transaction, error) {
	txs := make([]core.Transaction, 0)
	if len(values) == 0 {
		return txs, nil
	}

	header, err := ledger.NewHeader(toStrings(values[0]))
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if ledger.Blank(row) {
			continue
		}
		t, err := header.Decode(row)
		if err != nil {
			// Sheet rows are 1-based and the header takes the first one.
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		t.ID = int64(i)
		txs = append(txs, t)
	}
	return txs, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case string:
			out[i] = x
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}
