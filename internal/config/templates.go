package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# LEAN Dashboard Configuration

[paths]
# Root folder the engine writes per-session output under
live_root = "live"
# Fixture folder used in example mode
example_data_dir = "example_data"

[dashboard]
# Seconds between poll cycles in watch mode
refresh_rate = 10
# Log lines shown by the log viewer
log_lines = 100
# Maximum retained equity cache points per session (oldest trimmed first)
cache_max_points = 10000
# Serve synthetic example data instead of live sessions
example_mode = false
# Account currency label for the account view
account_currency = "USD"

[charts]
# Chart style: "candlestick" or "line"
style = "candlestick"
# Render charts inline instead of embedded
inline = false
# Overlay the benchmark series on the equity chart
show_benchmark = true
# Show the drawdown panel under the equity chart
show_drawdown = true
`

// createTemplateConfig writes a commented config template so first runs have
// something to edit. The template is also immediately usable: every value is
// a default.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil // already present
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
