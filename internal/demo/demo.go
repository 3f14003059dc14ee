// Package demo serves fixture data so the dashboard renders fully without a
// live engine. This is the only path that computes runtime statistics
// itself; live sessions always display the engine's own strings.
package demo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"lean-dashboard/internal/models"
	"lean-dashboard/pkg/utils"
)

// SessionName is the pseudo-session shown while example mode is active.
const SessionName = "example"

// Loader reads example fixtures from a directory. Every method degrades to
// an empty result when a fixture is missing or malformed, same contract as
// the live parser.
type Loader struct {
	dir    string
	logger zerolog.Logger
}

// NewLoader creates a fixture loader rooted at dir.
func NewLoader(dir string, logger zerolog.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

func (l *Loader) readJSON(name string, target interface{}) bool {
	raw, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		l.logger.Debug().Str("fixture", name).Err(err).Msg("Example fixture unreadable")
		return false
	}
	return true
}

// Account returns the example results body (cash, holdings, runtime stats).
func (l *Loader) Account() *models.SnapshotData {
	data := &models.SnapshotData{}
	if !l.readJSON("account.json", data) {
		return nil
	}
	return data
}

// Positions returns the example position rows.
func (l *Loader) Positions() []models.HoldingPosition {
	var positions []models.HoldingPosition
	l.readJSON("positions.json", &positions)
	return positions
}

type diskEquityRow struct {
	Datetime string   `json:"datetime"`
	Open     *float64 `json:"open"`
	High     *float64 `json:"high"`
	Low      *float64 `json:"low"`
	Close    float64  `json:"close"`
}

var equityTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Equity returns the example equity series, ascending. Rows missing OHLC
// fields flatten to their close.
func (l *Loader) Equity() []models.EquityPoint {
	var rows []diskEquityRow
	if !l.readJSON("equity.json", &rows) {
		return nil
	}

	points := make([]models.EquityPoint, 0, len(rows))
	for _, row := range rows {
		at, ok := rowTime(row.Datetime)
		if !ok {
			continue
		}
		pt := models.FlatPoint(at, row.Close)
		if row.Open != nil {
			pt.Open = *row.Open
		}
		if row.High != nil {
			pt.High = *row.High
		}
		if row.Low != nil {
			pt.Low = *row.Low
		}
		points = append(points, pt)
	}
	return points
}

func rowTime(value string) (time.Time, bool) {
	for _, layout := range equityTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Benchmarks returns the example benchmark series.
func (l *Loader) Benchmarks() []models.BenchmarkPoint {
	var points []models.BenchmarkPoint
	l.readJSON("benchmarks.json", &points)
	return points
}

// Orders returns the example order events.
func (l *Loader) Orders() []models.OrderEvent {
	var orders []models.OrderEvent
	l.readJSON("orders.json", &orders)
	return orders
}

// Insights returns the example insight records.
func (l *Loader) Insights() []models.Insight {
	var insights []models.Insight
	l.readJSON("insights.json", &insights)
	return insights
}

// Logs returns the example log lines.
func (l *Loader) Logs() []string {
	var lines []string
	l.readJSON("logs.json", &lines)
	return lines
}

// ServerStats returns the example resource stats, with a usable default
// when the fixture is absent.
func (l *Loader) ServerStats() models.ServerStats {
	stats := models.ServerStats{Uptime: "0d 00:00:00"}
	l.readJSON("server_stats.json", &stats)
	return stats
}

// SyntheticRuntimeStats recomputes display statistics from the example
// equity series, standing in for the strings a live engine would emit.
func SyntheticRuntimeStats(series []models.EquityPoint, holdings, unrealized, fees float64) map[string]string {
	stats := map[string]string{
		"Equity":     utils.FormatUSD(0),
		"Holdings":   utils.FormatUSD(holdings),
		"Unrealized": utils.FormatUSD(unrealized),
		"Fees":       utils.FormatUSD(fees),
		"Net Profit": utils.FormatPnL(0),
		"Return":     utils.FormatPercent(0),
	}
	if len(series) == 0 {
		return stats
	}

	first := series[0].Close
	last := series[len(series)-1].Close
	stats["Equity"] = utils.FormatUSD(last)
	stats["Net Profit"] = utils.FormatPnL(last - first)
	if first != 0 {
		stats["Return"] = utils.FormatPercent((last/first - 1) * 100)
	}
	return stats
}
