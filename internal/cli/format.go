package cli

import (
	"strconv"
	"time"

	"lean-dashboard/internal/snapshot"
)

// formatFloat renders a float with two decimals and no currency symbol.
func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// formatEventTime renders an order-event epoch for display.
func formatEventTime(epoch float64) string {
	if epoch == 0 {
		return "-"
	}
	return snapshot.FromEpoch(epoch).Format("2006-01-02 15:04:05")
}

// formatUTCString trims an engine UTC timestamp string to date + time.
func formatUTCString(value string) string {
	if value == "" {
		return "-"
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.Format("2006-01-02 15:04:05")
	}
	if len(value) > 19 {
		return value[:19]
	}
	return value
}

// truncate shortens a string for table display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
