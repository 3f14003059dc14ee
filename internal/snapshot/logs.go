package snapshot

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"lean-dashboard/internal/models"
	"lean-dashboard/pkg/utils"
)

// noisySubstrings are high-frequency low-signal engine log lines dropped
// from the tail view: periodic resource-isolator reports, margin echoes,
// and order-event duplicates that already surface in the order tables.
var noisySubstrings = []string{
	"Isolator.ExecuteWithTimeLimit()",
	"LiveMappingEventProvider(",
	"[Benchmark]",
	"[Margin]",
	"Margin Used",
	"Margin Remaining",
	"BrokerageTransactionHandler.Process()",
	"Total margin information:",
	"Order request margin information:",
	"LiveTradingResultHandler.OrderEvent()",
	"BacktestingBrokerage.PlaceOrder()",
	"Debug: New Order Event:",
}

var (
	ramUsedRe   = regexp.MustCompile(`Used:\s*(\d+)`)
	ramTotalRe  = regexp.MustCompile(`App:\s*(\d+)`)
	cpuRe       = regexp.MustCompile(`CPU:\s*(\d+)%`)
	marginUseRe = regexp.MustCompile(`Used[:\s]+\$?([\d,]+\.?\d*)`)
	marginRemRe = regexp.MustCompile(`Remaining[:\s]+\$?([\d,]+\.?\d*)`)
)

func readLogLines(sessionPath string) ([]string, bool) {
	raw, err := os.ReadFile(filepath.Join(sessionPath, "log.txt"))
	if err != nil {
		return nil, false
	}
	return strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n"), true
}

func isNoisy(line string) bool {
	for _, s := range noisySubstrings {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

// LogTail returns the last n log lines with the noisy denylist applied.
func (p Parser) LogTail(sessionPath string, n int) (string, Outcome) {
	lines, ok := readLogLines(sessionPath)
	if !ok {
		return "", Empty("no log file")
	}

	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		if !isNoisy(line) {
			filtered = append(filtered, line)
		}
	}
	if len(filtered) > n {
		filtered = filtered[len(filtered)-n:]
	}
	return strings.Join(filtered, "\n"), OK()
}

// RecentErrors returns error and exception lines from the last maxLines of
// the log.
func (p Parser) RecentErrors(sessionPath string, maxLines int) []string {
	lines, ok := readLogLines(sessionPath)
	if !ok {
		return nil
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	var errs []string
	for _, line := range lines {
		if strings.Contains(line, "ERROR") || strings.Contains(line, "Exception") {
			errs = append(errs, line)
		}
	}
	return errs
}

// ServerStats scrapes CPU and RAM from the most recent resource-isolator
// line and computes uptime as the span between the first and last
// timestamped lines of the log's head and tail windows.
func (p Parser) ServerStats(sessionPath string) models.ServerStats {
	stats := models.ServerStats{Uptime: "0d 00:00:00"}

	lines, ok := readLogLines(sessionPath)
	if !ok {
		return stats
	}

	var latest string
	for _, line := range lines {
		if strings.Contains(line, "Isolator.ExecuteWithTimeLimit()") {
			latest = line
		}
	}
	if latest != "" {
		if m := ramUsedRe.FindStringSubmatch(latest); m != nil {
			stats.RAMUsed, _ = strconv.Atoi(m[1])
		}
		if m := ramTotalRe.FindStringSubmatch(latest); m != nil {
			stats.RAMTotal, _ = strconv.Atoi(m[1])
		}
		if m := cpuRe.FindStringSubmatch(latest); m != nil {
			stats.CPUPercent, _ = strconv.Atoi(m[1])
		}
	}

	const window = 10
	head := lines
	if len(head) > window {
		head = head[:window]
	}
	tail := lines
	if len(tail) > window {
		tail = tail[len(tail)-window:]
	}

	for _, line := range head {
		if first, ok := parseLogTimestamp(line); ok {
			for i := len(tail) - 1; i >= 0; i-- {
				if last, ok := parseLogTimestamp(tail[i]); ok {
					stats.Uptime = utils.FormatUptime(last.Sub(first))
					break
				}
			}
			break
		}
	}
	return stats
}

// MarginSeries parses the timestamp-prefixed margin report lines into a
// used/remaining time series.
func (p Parser) MarginSeries(sessionPath string) []models.MarginPoint {
	lines, ok := readLogLines(sessionPath)
	if !ok {
		return nil
	}

	var series []models.MarginPoint
	for _, line := range lines {
		if !strings.Contains(line, "Margin") {
			continue
		}
		if !strings.Contains(line, "Used") && !strings.Contains(line, "Remaining") {
			continue
		}
		at, ok := parseLogTimestamp(line)
		if !ok {
			continue
		}

		point := models.MarginPoint{Datetime: at}
		matched := false
		if m := marginUseRe.FindStringSubmatch(line); m != nil {
			point.Used = utils.ParseDollar(m[1])
			matched = true
		}
		if m := marginRemRe.FindStringSubmatch(line); m != nil {
			point.Remaining = utils.ParseDollar(m[1])
			matched = true
		}
		if matched {
			series = append(series, point)
		}
	}
	return series
}
