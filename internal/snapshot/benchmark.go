package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"lean-dashboard/internal/models"
)

var benchmarkPriceRe = regexp.MustCompile(`SPY close:\s*([\d.]+)`)

type benchmarkRow struct {
	Timestamp float64 `json:"timestamp"`
	Price     float64 `json:"price"`
}

// BenchmarkSeries returns the reference-index price series, preferring the
// dedicated benchmark dump and falling back to scraping benchmark log lines.
// The series comes back deduplicated by datetime and sorted ascending.
func (p Parser) BenchmarkSeries(sessionPath string) []models.BenchmarkPoint {
	if series := p.benchmarkFromJSON(sessionPath); len(series) > 0 {
		return normalizeBenchmark(series)
	}
	return normalizeBenchmark(p.benchmarkFromLog(sessionPath))
}

func (p Parser) benchmarkFromJSON(sessionPath string) []models.BenchmarkPoint {
	raw, err := os.ReadFile(filepath.Join(sessionPath, "benchmark_spy.json"))
	if err != nil {
		return nil
	}
	var rows []benchmarkRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		p.logger.Debug().Err(err).Msg("Benchmark dump unreadable, falling back to log")
		return nil
	}

	series := make([]models.BenchmarkPoint, 0, len(rows))
	for _, row := range rows {
		series = append(series, models.BenchmarkPoint{
			Datetime: FromEpoch(row.Timestamp),
			Close:    row.Price,
		})
	}
	return series
}

func (p Parser) benchmarkFromLog(sessionPath string) []models.BenchmarkPoint {
	lines, ok := readLogLines(sessionPath)
	if !ok {
		return nil
	}

	var series []models.BenchmarkPoint
	for _, line := range lines {
		if !strings.Contains(line, "[Benchmark]") || !strings.Contains(line, "SPY") {
			continue
		}
		at, ok := parseLogTimestamp(line)
		if !ok {
			continue
		}
		m := benchmarkPriceRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		price, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		series = append(series, models.BenchmarkPoint{Datetime: at, Close: price})
	}
	return series
}

// normalizeBenchmark drops duplicate datetimes (first observation wins) and
// sorts ascending.
func normalizeBenchmark(series []models.BenchmarkPoint) []models.BenchmarkPoint {
	if len(series) == 0 {
		return nil
	}

	seen := make(map[int64]bool, len(series))
	deduped := make([]models.BenchmarkPoint, 0, len(series))
	for _, pt := range series {
		key := pt.Datetime.UnixNano()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, pt)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Datetime.Before(deduped[j].Datetime)
	})
	return deduped
}
