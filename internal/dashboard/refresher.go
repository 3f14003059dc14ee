// Package dashboard drives the poll cycle: one synchronous read-compute pass
// over the session files per tick, rendered by the presentation layer.
package dashboard

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"lean-dashboard/internal/config"
	"lean-dashboard/internal/demo"
	"lean-dashboard/internal/equity"
	"lean-dashboard/internal/logging"
	"lean-dashboard/internal/metrics"
	"lean-dashboard/internal/models"
	"lean-dashboard/internal/session"
	"lean-dashboard/internal/snapshot"
	"lean-dashboard/internal/store"
)

// DefaultReturnDays is the lookback window of the rolling-return panel.
const DefaultReturnDays = 7

// RefreshResult is everything one poll cycle produces for rendering. A
// failed cycle yields the zero value; the next tick recomputes from scratch.
type RefreshResult struct {
	GeneratedAt time.Time
	DemoMode    bool

	Session  string
	Sessions []string

	Account      models.AccountSnapshot
	RuntimeStats map[string]string

	Equity   []models.EquityPoint
	Drawdown []models.DrawdownPoint
	Returns  []models.ReturnPoint

	Orders   []models.OrderEvent
	Insights []models.Insight

	LogTail     string
	Errors      []string
	ServerStats models.ServerStats
	Margin      []models.MarginPoint
	Benchmark   []models.BenchmarkPoint
}

// Refresher owns the fixed-cadence poll loop plus a manual trigger channel.
// All computation happens in RefreshOnce, which stays independently callable
// so the read-compute pipeline is testable without the loop.
type Refresher struct {
	cfg     *config.Config
	locator *session.Locator
	parser  snapshot.Parser
	cache   *store.EquityCache
	archive store.Archive
	demo    *demo.Loader
	logger  zerolog.Logger
	trigger chan struct{}
}

// NewRefresher wires the refresh pipeline. archive may be nil when the
// sqlite archive is unavailable; mirroring is then skipped.
func NewRefresher(cfg *config.Config, locator *session.Locator, cache *store.EquityCache, archive store.Archive, demoLoader *demo.Loader, logger zerolog.Logger) *Refresher {
	return &Refresher{
		cfg:     cfg,
		locator: locator,
		parser:  snapshot.NewParser(logger),
		cache:   cache,
		archive: archive,
		demo:    demoLoader,
		logger:  logger,
		trigger: make(chan struct{}, 1),
	}
}

// Trigger requests an immediate refresh outside the fixed cadence. Safe to
// call from any goroutine; coalesces while a cycle is pending.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run executes refresh cycles on the configured cadence until ctx is
// cancelled, invoking handle with each result.
func (r *Refresher) Run(ctx context.Context, handle func(RefreshResult)) {
	interval := time.Duration(r.cfg.Dashboard.RefreshRate) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	handle(r.RefreshOnce(ctx))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			handle(r.RefreshOnce(ctx))
		case <-r.trigger:
			handle(r.RefreshOnce(ctx))
		}
	}
}

// RefreshOnce performs one full synchronous read-compute cycle.
func (r *Refresher) RefreshOnce(ctx context.Context) RefreshResult {
	started := time.Now()

	var result RefreshResult
	if r.cfg.Dashboard.ExampleMode {
		result = r.refreshDemo()
	} else {
		result = r.refreshLive(ctx)
	}
	result.GeneratedAt = started

	logging.LogRefresh(r.logger, result.Session, len(result.Equity), time.Since(started))
	return result
}

func (r *Refresher) refreshLive(ctx context.Context) RefreshResult {
	result := RefreshResult{}

	sessions := r.locator.ListSessions()
	if len(sessions) == 0 {
		return result
	}
	result.Sessions = sessions
	result.Session = sessions[0]

	sessionPath := r.locator.Resolve(result.Session)
	if sessionPath == "" {
		return result
	}

	results, out := r.parser.LoadResults(ctx, sessionPath)
	if !out.IsOK() {
		r.logger.Debug().Str("session", result.Session).Str("outcome", out.String()).Msg("Primary results unavailable this cycle")
	}
	result.Account = equity.BuildAccountSnapshot(results, r.cfg.Dashboard.AccountCurrency)
	if results != nil {
		result.RuntimeStats = results.RuntimeStatistics
	}

	paths := make([]string, 0, len(sessions))
	for _, s := range sessions {
		if p := r.locator.Resolve(s); p != "" {
			paths = append(paths, p)
		}
	}
	result.Equity = equity.Reconstruct(r.parser, paths)
	result.Drawdown = metrics.Drawdown(result.Equity)
	result.Returns = metrics.PeriodReturns(result.Equity, DefaultReturnDays)

	result.Orders, _ = r.parser.LoadOrderEvents(sessionPath)
	result.Insights, _ = r.parser.LoadInsights(sessionPath)
	result.LogTail, _ = r.parser.LogTail(sessionPath, r.cfg.Dashboard.LogLines)
	result.Errors = r.parser.RecentErrors(sessionPath, 200)
	result.ServerStats = r.parser.ServerStats(sessionPath)
	result.Margin = r.parser.MarginSeries(sessionPath)
	result.Benchmark = r.parser.BenchmarkSeries(sessionPath)

	r.persist(ctx, result.Session, sessionPath, results, result.Equity)
	return result
}

// persist extends the derived state beside the reconstructor: the JSON
// equity cache and processed samples in the session directory, mirrored into
// the sqlite archive.
func (r *Refresher) persist(ctx context.Context, sessionID, sessionPath string, results *models.SnapshotData, series []models.EquityPoint) {
	now := time.Now()

	if len(series) > 0 && r.cache != nil {
		last := series[len(series)-1]
		if err := r.cache.Append(sessionPath, sessionID, last.Datetime, last.Close); err != nil {
			r.logger.Debug().Err(err).Msg("Equity cache append failed")
		}
	}

	sessionData := store.NewSessionData(sessionPath, r.logger)
	samples := sessionData.Update(results, now)

	if r.archive == nil {
		return
	}
	if err := r.archive.SaveEquityPoints(ctx, sessionID, series); err != nil {
		r.logger.Debug().Err(err).Msg("Archive equity mirror failed")
	}
	if len(samples) > 0 {
		if err := r.archive.SaveSample(ctx, sessionID, samples[len(samples)-1]); err != nil {
			r.logger.Debug().Err(err).Msg("Archive sample mirror failed")
		}
	}
}

func (r *Refresher) refreshDemo() RefreshResult {
	result := RefreshResult{
		DemoMode: true,
		Session:  demo.SessionName,
		Sessions: []string{demo.SessionName},
	}
	if r.demo == nil {
		return result
	}

	account := r.demo.Account()
	result.Account = equity.BuildAccountSnapshot(account, r.cfg.Dashboard.AccountCurrency)
	result.Equity = r.demo.Equity()
	result.Drawdown = metrics.Drawdown(result.Equity)
	result.Returns = metrics.PeriodReturns(result.Equity, DefaultReturnDays)
	result.Orders = r.demo.Orders()
	result.Insights = r.demo.Insights()
	result.Benchmark = r.demo.Benchmarks()
	result.ServerStats = r.demo.ServerStats()

	if account != nil && len(account.RuntimeStatistics) > 0 {
		result.RuntimeStats = account.RuntimeStatistics
	} else {
		result.RuntimeStats = demo.SyntheticRuntimeStats(result.Equity, result.Account.Invested, result.Account.Unrealized, 0)
	}

	lines := r.demo.Logs()
	if len(lines) > r.cfg.Dashboard.LogLines {
		lines = lines[len(lines)-r.cfg.Dashboard.LogLines:]
	}
	result.LogTail = joinLines(lines)
	return result
}

func joinLines(lines []string) string {
	out := ""
	for i, line := range lines {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}
