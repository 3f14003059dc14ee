package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"lean-dashboard/internal/config"
	"lean-dashboard/internal/demo"
	"lean-dashboard/internal/session"
	"lean-dashboard/internal/store"
)

func testConfig(liveRoot, exampleDir string) *config.Config {
	return &config.Config{
		Paths: config.PathsConfig{
			LiveRoot:       liveRoot,
			ExampleDataDir: exampleDir,
		},
		Dashboard: config.DashboardConfig{
			RefreshRate:     1,
			LogLines:        100,
			CacheMaxPoints:  1000,
			AccountCurrency: "USD",
		},
		Charts: config.ChartConfig{Style: "line"},
	}
}

func newTestRefresher(cfg *config.Config) *Refresher {
	logger := zerolog.Nop()
	return NewRefresher(
		cfg,
		session.NewLocator(cfg.Paths.LiveRoot, logger),
		store.NewEquityCache(cfg.Dashboard.CacheMaxPoints, logger),
		nil,
		demo.NewLoader(cfg.Paths.ExampleDataDir, logger),
		logger,
	)
}

func writeSessionFiles(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"config": `{"id": 1, "algorithm-type-name": "TestAlgo"}`,
		"L-1.json": `{
			"cash": {"USD": {"amount": 10000}},
			"holdings": {"AAPL": {"q": 10, "p": 100, "v": 1000, "u": 50}},
			"runtimeStatistics": {"Equity": "$11,000.00"}
		}`,
		"L-1_minute.json": `{
			"state": {"EndTime": "2024-03-01T10:00:00"},
			"cash": {"USD": {"amount": 10000}},
			"holdings": {"AAPL": {"q": 10, "p": 100}}
		}`,
		"L-2_minute.json": `{
			"state": {"EndTime": "2024-03-01T10:01:00"},
			"cash": {"USD": {"amount": 10000}},
			"holdings": {"AAPL": {"q": 10, "p": 110}}
		}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRefreshOnceLive(t *testing.T) {
	root := t.TempDir()
	sessionDir := writeSessionFiles(t, root, "2024-03-01")

	cfg := testConfig(root, "")
	r := newTestRefresher(cfg)

	result := r.RefreshOnce(context.Background())
	if result.DemoMode {
		t.Error("live refresh must not be demo mode")
	}
	if result.Session != "2024-03-01" {
		t.Errorf("session: %q", result.Session)
	}
	if len(result.Equity) != 2 {
		t.Fatalf("expected 2 reconstructed points, got %d", len(result.Equity))
	}
	if result.Equity[0].Close != 11000 || result.Equity[1].Close != 11100 {
		t.Errorf("equity values: %v %v", result.Equity[0].Close, result.Equity[1].Close)
	}
	if result.Account.Equity != 11000 {
		t.Errorf("account equity: %v", result.Account.Equity)
	}
	if result.RuntimeStats["Equity"] != "$11,000.00" {
		t.Errorf("runtime stats: %v", result.RuntimeStats)
	}
	if len(result.Drawdown) != 2 {
		t.Errorf("drawdown rows: %d", len(result.Drawdown))
	}

	// The cycle persists the newest point into the session's equity cache.
	cache := store.NewEquityCache(1000, zerolog.Nop())
	points := cache.Load(sessionDir)
	if len(points) != 1 || points[0].Close != 11100 {
		t.Errorf("cache after refresh: %+v", points)
	}
}

func TestRefreshOnceEmptyRoot(t *testing.T) {
	cfg := testConfig(t.TempDir(), "")
	r := newTestRefresher(cfg)

	result := r.RefreshOnce(context.Background())
	if result.Session != "" || len(result.Equity) != 0 {
		t.Errorf("empty root must produce an empty result: %+v", result)
	}
}

func TestRefreshOnceDemoMode(t *testing.T) {
	exampleDir := t.TempDir()
	fixtures := map[string]string{
		"account.json": `{"cash": {"USD": {"amount": 90000}}, "holdings": {"SPY": {"q": 20, "p": 500, "v": 10000}}}`,
		"equity.json":  `[{"datetime": "2024-03-01T10:00:00", "close": 100000}, {"datetime": "2024-03-01T10:01:00", "close": 100500}]`,
		"orders.json":  `[{"symbol": "SPY", "direction": "buy", "time": 1709287200}]`,
		"logs.json":    `["line one", "line two"]`,
	}
	for name, content := range fixtures {
		if err := os.WriteFile(filepath.Join(exampleDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := testConfig(t.TempDir(), exampleDir)
	cfg.Dashboard.ExampleMode = true
	r := newTestRefresher(cfg)

	result := r.RefreshOnce(context.Background())
	if !result.DemoMode {
		t.Error("expected demo mode")
	}
	if result.Session != demo.SessionName {
		t.Errorf("session: %q", result.Session)
	}
	if len(result.Equity) != 2 {
		t.Errorf("equity points: %d", len(result.Equity))
	}
	if result.Account.CashTotal != 90000 {
		t.Errorf("cash: %v", result.Account.CashTotal)
	}
	if len(result.Orders) != 1 {
		t.Errorf("orders: %d", len(result.Orders))
	}
	if result.LogTail != "line one\nline two" {
		t.Errorf("log tail: %q", result.LogTail)
	}
}

func TestTriggerCoalesces(t *testing.T) {
	cfg := testConfig(t.TempDir(), "")
	r := newTestRefresher(cfg)

	// Multiple triggers while no cycle is draining must not block.
	r.Trigger()
	r.Trigger()
	r.Trigger()

	select {
	case <-r.trigger:
	default:
		t.Fatal("expected a pending trigger")
	}
	select {
	case <-r.trigger:
		t.Fatal("triggers must coalesce to one pending signal")
	default:
	}
}
