package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lean-dashboard/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMainResultsFilePrefersConfiguredID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config", `{"id": 12345}`)
	writeFile(t, dir, "L-12345.json", `{}`)
	writeFile(t, dir, "L-99999.json", `{}`)

	p := NewParser(zerolog.Nop())
	path, out := p.MainResultsFile(dir)
	if !out.IsOK() {
		t.Fatalf("outcome: %s", out.String())
	}
	if filepath.Base(path) != "L-12345.json" {
		t.Errorf("expected the configured id file, got %s", path)
	}
}

func TestMainResultsFileSkipsIntervalDumps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "L-1_minute.json", `{}`)
	writeFile(t, dir, "L-1_second_Strategy%20Equity.json", `{}`)
	writeFile(t, dir, "L-1-order-events.json", `[]`)
	writeFile(t, dir, "L-1.json", `{}`)

	p := NewParser(zerolog.Nop())
	path, out := p.MainResultsFile(dir)
	if !out.IsOK() {
		t.Fatalf("outcome: %s", out.String())
	}
	if filepath.Base(path) != "L-1.json" {
		t.Errorf("interval and order-event dumps must be skipped, got %s", path)
	}
}

func TestMainResultsFileEmptySession(t *testing.T) {
	p := NewParser(zerolog.Nop())
	if _, out := p.MainResultsFile(t.TempDir()); out.IsOK() {
		t.Error("empty session must not resolve a results file")
	}
}

func TestLoadResultsDecodesBody(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "L-1.json", `{
		"state": {"EndTime": "2024-03-01T10:00:00"},
		"cash": {"USD": {"amount": 1000}},
		"runtimeStatistics": {"Equity": "$1,000.00"}
	}`)

	p := NewParser(zerolog.Nop())
	data, out := p.LoadResults(context.Background(), dir)
	if !out.IsOK() {
		t.Fatalf("outcome: %s", out.String())
	}
	if data.State == nil || data.State.EndTime != "2024-03-01T10:00:00" {
		t.Errorf("state: %+v", data.State)
	}
	if data.RuntimeStatistics["Equity"] != "$1,000.00" {
		t.Errorf("runtime stats: %v", data.RuntimeStatistics)
	}
}

func TestLoadResultsCorruptFileFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "L-1.json", `{"state": tru`)

	p := NewParser(zerolog.Nop())
	_, out := p.LoadResults(context.Background(), dir)
	if out.Status != StatusFailed {
		t.Errorf("corrupt primary results must fail, got %s", out.String())
	}
}

func TestLoadOrderEventsMergesAndSortsDescending(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "L-1-order-events.json",
		`[{"symbol": "AAPL", "time": 1700000100}, {"symbol": "MSFT", "time": 1700000300}]`)
	writeFile(t, dir, "L-2-order-events.json",
		`[{"symbol": "SPY", "time": 1700000200}]`)

	p := NewParser(zerolog.Nop())
	events, out := p.LoadOrderEvents(dir)
	if !out.IsOK() {
		t.Fatalf("outcome: %s", out.String())
	}
	if len(events) != 3 {
		t.Fatalf("expected merged events, got %d", len(events))
	}
	if events[0].Symbol != "MSFT" || events[1].Symbol != "SPY" || events[2].Symbol != "AAPL" {
		t.Errorf("expected newest first, got %v %v %v", events[0].Symbol, events[1].Symbol, events[2].Symbol)
	}
}

func TestLoadInsights(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config", `{"id": 7}`)
	if err := os.MkdirAll(filepath.Join(dir, "L-7"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "L-7"), "alpha-results.json",
		`[{"symbol": "AAPL", "direction": "Up", "confidence": 0.8}]`)

	p := NewParser(zerolog.Nop())
	insights, out := p.LoadInsights(dir)
	if !out.IsOK() {
		t.Fatalf("outcome: %s", out.String())
	}
	if len(insights) != 1 || insights[0].Symbol != "AAPL" {
		t.Errorf("insights: %+v", insights)
	}
}

func TestExtractEquitySeriesHandlesBothRowShapes(t *testing.T) {
	raw := `{
		"charts": {
			"Strategy Equity": {
				"name": "Strategy Equity",
				"series": {
					"Equity": {
						"name": "Equity",
						"values": [
							[1700000000, 100000],
							[1700000060, 100100, 100200, 100000, 100150]
						]
					}
				}
			}
		}
	}`
	data := &models.SnapshotData{}
	if err := json.Unmarshal([]byte(raw), data); err != nil {
		t.Fatal(err)
	}

	points := ExtractEquitySeries(data)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Close != 100000 || points[0].Open != 100000 {
		t.Errorf("pair row must flatten to close: %+v", points[0])
	}
	if points[1].Open != 100100 || points[1].Close != 100150 {
		t.Errorf("candle row: %+v", points[1])
	}
}

func TestScanSnapshotsOrdersByReportedTime(t *testing.T) {
	dir := t.TempDir()
	// Later reported time, written first.
	writeFile(t, dir, "L-1_minute.json", `{"state": {"EndTime": "2024-03-01T11:00:00"}}`)
	writeFile(t, dir, "L-2_minute.json", `{"state": {"EndTime": "2024-03-01T10:00:00"}}`)
	writeFile(t, dir, "L-3_second_Strategy%20Equity.json", `{"state": {"EndTime": "2024-03-01T10:30:00"}}`)

	p := NewParser(zerolog.Nop())
	entries := p.ScanSnapshots(dir)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Reported.Before(entries[i-1].Reported) {
			t.Errorf("entries out of order at %d", i)
		}
	}
	if entries[0].Name != "L-2_minute.json" {
		t.Errorf("expected the earliest reported dump first, got %s", entries[0].Name)
	}
}

func TestScanSnapshotsFallsBackToModTime(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "L-1_minute.json", `{"cash": {}}`)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	p := NewParser(zerolog.Nop())
	entries := p.ScanSnapshots(dir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].Reported.Equal(info.ModTime()) {
		t.Errorf("missing state must fall back to mtime: %v != %v", entries[0].Reported, info.ModTime())
	}
}

func TestScanSnapshotsSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "L-1_minute.json", `{"state": {"EndTime": "2024-03-01T10:00:00"}}`)
	writeFile(t, dir, "L-2_minute.json", `half-written`)

	p := NewParser(zerolog.Nop())
	entries := p.ScanSnapshots(dir)
	if len(entries) != 1 {
		t.Fatalf("corrupt dump must be skipped, got %d entries", len(entries))
	}
}

func TestBenchmarkSeriesFromJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "benchmark_spy.json", `[
		{"timestamp": 1709287500, "price": 511.5},
		{"timestamp": 1709287200, "price": 510.0},
		{"timestamp": 1709287200, "price": 999.0}
	]`)

	p := NewParser(zerolog.Nop())
	series := p.BenchmarkSeries(dir)
	if len(series) != 2 {
		t.Fatalf("expected dedup to 2 points, got %d", len(series))
	}
	if !series[0].Datetime.Before(series[1].Datetime) {
		t.Error("benchmark series must be ascending")
	}
	if series[0].Close != 510.0 {
		t.Errorf("first occurrence wins on duplicates, got %v", series[0].Close)
	}
	if !series[0].Datetime.Equal(time.Unix(1709287200, 0)) {
		t.Errorf("timestamp: got %v", series[0].Datetime)
	}
}

func TestBenchmarkSeriesFromLogFallback(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir,
		"2024-03-01T10:00:00 TRACE:: [Benchmark] SPY close: 510.25",
		"2024-03-01T10:05:00 TRACE:: [Benchmark] SPY close: 511.00",
	)

	p := NewParser(zerolog.Nop())
	series := p.BenchmarkSeries(dir)
	if len(series) != 2 {
		t.Fatalf("expected 2 scraped points, got %d", len(series))
	}
	if series[0].Close != 510.25 || series[1].Close != 511.00 {
		t.Errorf("scraped prices: %+v", series)
	}
}
