package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lean-dashboard/internal/models"
	"lean-dashboard/pkg/utils"
)

// resultsRetry bounds rereads of the primary results file, which the engine
// rewrites in place. Broader directory scans do not retry; they pick files
// up on the next poll cycle instead.
var resultsRetry = utils.FixedRetryConfig(3, 100*time.Millisecond)

// Parser reads one session's files. All methods are best-effort and never
// return an error; the Outcome carries the degrade reason.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a parser that logs degraded reads at debug level.
func NewParser(logger zerolog.Logger) Parser {
	return Parser{logger: logger}
}

// LoadConfig reads the session's `config` file.
func (p Parser) LoadConfig(sessionPath string) (*models.SessionConfig, Outcome) {
	path := filepath.Join(sessionPath, "config")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, Empty("no config file")
	}
	cfg := &models.SessionConfig{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		p.logger.Debug().Str("file", path).Err(err).Msg("Config unreadable")
		return nil, Failed(fmt.Sprintf("config parse: %v", err))
	}
	return cfg, OK()
}

// MainResultsFile locates the session's primary results file: `L-<id>.json`
// when the config names an id, otherwise the first `L-*.json` that is not an
// interval dump or order-events file.
func (p Parser) MainResultsFile(sessionPath string) (string, Outcome) {
	if cfg, out := p.LoadConfig(sessionPath); out.IsOK() && cfg.ID.String() != "" {
		candidate := filepath.Join(sessionPath, fmt.Sprintf("L-%s.json", cfg.ID.String()))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, OK()
		}
	}

	matches, err := filepath.Glob(filepath.Join(sessionPath, "L-*.json"))
	if err != nil {
		return "", Empty("no results file")
	}
	sort.Strings(matches)
	for _, m := range matches {
		name := filepath.Base(m)
		if strings.Contains(name, "minute") || strings.Contains(name, "second") || strings.Contains(name, "order-events") {
			continue
		}
		return m, OK()
	}
	return "", Empty("no results file")
}

// LoadResults reads and decodes the primary results file with a bounded
// retry, since the engine may be mid-write.
func (p Parser) LoadResults(ctx context.Context, sessionPath string) (*models.SnapshotData, Outcome) {
	path, out := p.MainResultsFile(sessionPath)
	if !out.IsOK() {
		return nil, out
	}

	data, err := utils.RetryWithResult(ctx, resultsRetry, func() (*models.SnapshotData, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		decoded := &models.SnapshotData{}
		if err := json.Unmarshal(raw, decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})
	if err != nil {
		p.logger.Debug().Str("file", path).Err(err).Msg("Results unreadable after retries")
		return nil, Failed(fmt.Sprintf("results parse: %v", err))
	}
	return data, OK()
}

// LoadOrderEvents merges every order-events dump in the session, newest
// event first. Corrupt dumps are skipped.
func (p Parser) LoadOrderEvents(sessionPath string) ([]models.OrderEvent, Outcome) {
	matches, err := filepath.Glob(filepath.Join(sessionPath, "L-*-order-events.json"))
	if err != nil || len(matches) == 0 {
		return nil, Empty("no order events")
	}

	var events []models.OrderEvent
	for _, m := range matches {
		raw, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		var batch []models.OrderEvent
		if err := json.Unmarshal(raw, &batch); err != nil {
			p.logger.Debug().Str("file", m).Err(err).Msg("Order events unreadable")
			continue
		}
		events = append(events, batch...)
	}
	if len(events) == 0 {
		return nil, Empty("no order events")
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time > events[j].Time
	})
	return events, OK()
}

// LoadInsights reads the alpha insight dump under `L-<id>/alpha-results.json`.
func (p Parser) LoadInsights(sessionPath string) ([]models.Insight, Outcome) {
	cfg, out := p.LoadConfig(sessionPath)
	if !out.IsOK() || cfg.ID.String() == "" {
		return nil, Empty("no session config")
	}

	path := filepath.Join(sessionPath, "L-"+cfg.ID.String(), "alpha-results.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, Empty("no insights file")
	}
	var insights []models.Insight
	if err := json.Unmarshal(raw, &insights); err != nil {
		p.logger.Debug().Str("file", path).Err(err).Msg("Insights unreadable")
		return nil, Failed(fmt.Sprintf("insights parse: %v", err))
	}
	return insights, OK()
}

// ExtractEquitySeries pulls the engine's own "Strategy Equity" chart out of
// a results file. Rows may be [ts, close] pairs or [ts, o, h, l, c] candles.
func ExtractEquitySeries(data *models.SnapshotData) []models.EquityPoint {
	if data == nil {
		return nil
	}
	chart, ok := data.Charts["Strategy Equity"]
	if !ok {
		return nil
	}
	series, ok := chart.Series["Equity"]
	if !ok {
		return nil
	}

	points := make([]models.EquityPoint, 0, len(series.Values))
	for _, raw := range series.Values {
		if pt, ok := decodeSeriesRow(raw); ok {
			points = append(points, pt)
		}
	}
	return points
}

func decodeSeriesRow(raw json.RawMessage) (models.EquityPoint, bool) {
	var row []float64
	if err := json.Unmarshal(raw, &row); err != nil || len(row) < 2 {
		return models.EquityPoint{}, false
	}

	at := FromEpoch(row[0])
	if len(row) >= 5 {
		return models.EquityPoint{
			Datetime: at,
			Open:     row[1],
			High:     row[2],
			Low:      row[3],
			Close:    row[4],
		}, true
	}
	return models.FlatPoint(at, row[1]), true
}
