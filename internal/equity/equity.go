// Package equity reconstructs a single ordered equity series out of the
// unordered, duplicate-laden stream of chart dumps a live session leaves on
// disk.
package equity

import (
	"sort"
	"time"

	"lean-dashboard/internal/models"
	"lean-dashboard/internal/snapshot"
)

// Candidate is one provisional equity observation, tagged with where it came
// from so same-instant duplicates can be resolved by write order.
type Candidate struct {
	Point   models.EquityPoint
	Source  string
	ModTime time.Time
}

// CashTotal computes the account-currency cash total of one snapshot.
// Per-currency entries prefer valueInAccountCurrency over the raw amount; an
// entry carrying neither is ignored and does not count as "has cash", which
// is why the boolean exists: a snapshot with no usable cash data carries
// forward the previous total instead of zeroing it.
func CashTotal(data *models.SnapshotData) (float64, bool) {
	if data == nil || len(data.Cash) == 0 {
		return 0, false
	}

	total := 0.0
	hasCash := false
	for _, entry := range data.Cash {
		switch {
		case entry.ValueInAccountCurrency != nil:
			total += *entry.ValueInAccountCurrency
			hasCash = true
		case entry.Amount != nil:
			total += *entry.Amount
			hasCash = true
		}
	}
	return total, hasCash
}

// HoldingsValue computes the mark-to-market holdings total of one snapshot,
// updating lastPrices with any price the snapshot reports. The valuation
// price for a held quantity resolves in priority order: the last known
// explicit price, value/quantity, then average price. A quantity-less
// holding contributes its raw value. The boolean reports whether any entry
// shows an actual open position.
func HoldingsValue(data *models.SnapshotData, lastPrices map[string]float64) (float64, bool) {
	if data == nil || len(data.Holdings) == 0 {
		return 0, false
	}

	total := 0.0
	hasPosition := false
	for symbol, h := range data.Holdings {
		if h.Price != nil {
			lastPrices[symbol] = *h.Price
		}

		if h.Quantity == nil {
			if h.Value != nil {
				total += *h.Value
				if *h.Value != 0 {
					hasPosition = true
				}
			}
			continue
		}

		qty := *h.Quantity
		if qty != 0 {
			hasPosition = true
		}

		price, known := lastPrices[symbol]
		if !known && h.Value != nil && qty != 0 {
			price = *h.Value / qty
			lastPrices[symbol] = price
			known = true
		}
		if !known && h.AveragePrice != nil {
			price = *h.AveragePrice
			lastPrices[symbol] = price
			known = true
		}
		if !known {
			continue
		}

		total += qty * price
	}
	return total, hasPosition
}

// CollectCandidates walks one session's chart dumps in (reported, mtime)
// order and produces equity candidates. Running state carries the last known
// cash total and per-symbol prices forward across dumps, so a partial dump
// that omits cash or a price does not spike the series. No candidate is
// emitted until the first dump showing an open position: an all-cash prefix
// would chart as a misleading flat baseline before the strategy trades.
func CollectCandidates(parser snapshot.Parser, sessionPath string) []Candidate {
	entries := parser.ScanSnapshots(sessionPath)
	if len(entries) == 0 {
		return nil
	}

	lastPrices := make(map[string]float64)
	lastCash := 0.0
	haveCash := false
	started := false

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		cash, hasCash := CashTotal(entry.Data)
		if hasCash {
			lastCash = cash
			haveCash = true
		} else if haveCash {
			cash = lastCash
		} else {
			cash = 0
		}

		holdings, hasPosition := HoldingsValue(entry.Data, lastPrices)
		value := cash + holdings

		if !started {
			if !hasPosition {
				continue
			}
			started = true
		}

		// Non-positive equity marks a not-yet-valid dump, not a real account
		// state.
		if value <= 0 {
			continue
		}

		candidates = append(candidates, Candidate{
			Point:   models.FlatPoint(entry.Reported, value),
			Source:  entry.Name,
			ModTime: entry.ModTime,
		})
	}
	return candidates
}

// Reconstruct merges the candidates of every given session into one series,
// strictly ascending in datetime with at most one point per instant. When
// two dumps claim the same instant the one written later to disk wins.
func Reconstruct(parser snapshot.Parser, sessionPaths []string) []models.EquityPoint {
	var candidates []Candidate
	for _, path := range sessionPaths {
		candidates = append(candidates, CollectCandidates(parser, path)...)
	}
	return Finalize(candidates)
}

// Finalize orders candidates by (datetime, mtime), keeps the
// last-written value for each duplicated instant, and returns the series
// sorted ascending by datetime.
func Finalize(candidates []Candidate) []models.EquityPoint {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Point.Datetime.Equal(sorted[j].Point.Datetime) {
			return sorted[i].Point.Datetime.Before(sorted[j].Point.Datetime)
		}
		return sorted[i].ModTime.Before(sorted[j].ModTime)
	})

	series := make([]models.EquityPoint, 0, len(sorted))
	for _, c := range sorted {
		n := len(series)
		if n > 0 && series[n-1].Datetime.Equal(c.Point.Datetime) {
			series[n-1] = c.Point // latest write wins
			continue
		}
		series = append(series, c.Point)
	}
	return series
}
