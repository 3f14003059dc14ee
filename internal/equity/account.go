package equity

import (
	"sort"

	"lean-dashboard/internal/models"
)

func deref(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// BuildAccountSnapshot aggregates the primary results file into the account
// view: cash total, invested value from the reported holding values, and the
// per-position display rows sorted by symbol.
func BuildAccountSnapshot(results *models.SnapshotData, accountCurrency string) models.AccountSnapshot {
	snapshot := models.AccountSnapshot{AccountCurrency: accountCurrency}
	if results == nil {
		return snapshot
	}

	if cash, ok := CashTotal(results); ok {
		snapshot.CashTotal = cash
	}

	symbols := make([]string, 0, len(results.Holdings))
	for symbol := range results.Holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		h := results.Holdings[symbol]
		position := models.HoldingPosition{
			Symbol:        symbol,
			Quantity:      deref(h.Quantity, 0),
			AveragePrice:  deref(h.AveragePrice, 0),
			Price:         deref(h.Price, 0),
			Value:         deref(h.Value, 0),
			Unrealized:    deref(h.Unrealized, 0),
			UnrealizedPct: deref(h.UnrealizedPct, 0),
			FxRate:        deref(h.FxRate, 1),
		}
		snapshot.Invested += position.Value
		snapshot.Unrealized += position.Unrealized
		snapshot.Positions = append(snapshot.Positions, position)
	}

	snapshot.Equity = snapshot.CashTotal + snapshot.Invested
	return snapshot
}
