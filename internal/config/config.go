// Package config provides configuration management for the dashboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	apperrors "lean-dashboard/internal/errors"
)

// File and folder names inside a session directory. These are fixed by the
// engine's output layout, not configurable.
const (
	CommandsFolder    = "commands"
	SellOrdersFile    = "sell_orders.json"
	EquityCacheFile   = "equity_cache.json"
	ProcessedDataFile = "processed_data.json"
	LogFile           = "log.txt"
	BenchmarkFile     = "benchmark_spy.json"
)

// Config holds all application configuration.
type Config struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Charts    ChartConfig     `mapstructure:"charts"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	LiveRoot       string `mapstructure:"live_root"`        // root of per-session engine output
	ExampleDataDir string `mapstructure:"example_data_dir"` // demo-mode fixtures
	ArchivePath    string `mapstructure:"archive_path"`     // sqlite equity archive
}

// DashboardConfig holds refresh and data-volume settings.
type DashboardConfig struct {
	RefreshRate     int    `mapstructure:"refresh_rate"` // seconds between poll cycles
	LogLines        int    `mapstructure:"log_lines"`
	CacheMaxPoints  int    `mapstructure:"cache_max_points"`
	ExampleMode     bool   `mapstructure:"example_mode"`
	AccountCurrency string `mapstructure:"account_currency"`
}

// ChartConfig holds pure presentation switches.
type ChartConfig struct {
	Style         string `mapstructure:"style"` // "candlestick" or "line"
	Inline        bool   `mapstructure:"inline"`
	ShowBenchmark bool   `mapstructure:"show_benchmark"`
	ShowDrawdown  bool   `mapstructure:"show_drawdown"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/lean-dashboard"
	}
	return filepath.Join(home, ".config", "lean-dashboard")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// Config file not found, create template
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("paths.live_root", "live")
	v.SetDefault("paths.example_data_dir", "example_data")
	v.SetDefault("paths.archive_path", filepath.Join(configDir, "archive.db"))
	v.SetDefault("dashboard.refresh_rate", 10)
	v.SetDefault("dashboard.log_lines", 100)
	v.SetDefault("dashboard.cache_max_points", 10000)
	v.SetDefault("dashboard.example_mode", false)
	v.SetDefault("dashboard.account_currency", "USD")
	v.SetDefault("charts.style", "candlestick")
	v.SetDefault("charts.inline", false)
	v.SetDefault("charts.show_benchmark", true)
	v.SetDefault("charts.show_drawdown", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DASHBOARD_LIVE_PATH"); v != "" {
		cfg.Paths.LiveRoot = v
	}
	if v := os.Getenv("DASHBOARD_EXAMPLE_DATA_DIR"); v != "" {
		cfg.Paths.ExampleDataDir = v
	}
	if v := os.Getenv("DASHBOARD_EXAMPLE_MODE"); v != "" {
		cfg.Dashboard.ExampleMode = v == "1" || v == "true"
	}
	if v := os.Getenv("DASHBOARD_REFRESH_RATE"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.RefreshRate = rate
		}
	}
	if v := os.Getenv("DASHBOARD_CHART_STYLE"); v != "" {
		cfg.Charts.Style = v
	}
	if v := os.Getenv("DASHBOARD_CHART_INLINE"); v != "" {
		cfg.Charts.Inline = v == "1" || v == "true"
	}
	if v := os.Getenv("DASHBOARD_SHOW_BENCHMARK"); v != "" {
		cfg.Charts.ShowBenchmark = v == "1" || v == "true"
	}
	if v := os.Getenv("DASHBOARD_SHOW_DRAWDOWN"); v != "" {
		cfg.Charts.ShowDrawdown = v == "1" || v == "true"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Dashboard.RefreshRate <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "refresh_rate must be positive")
	}
	if c.Dashboard.LogLines <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "log_lines must be positive")
	}
	if c.Dashboard.CacheMaxPoints <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "cache_max_points must be positive")
	}
	if c.Charts.Style != "candlestick" && c.Charts.Style != "line" {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "chart style %q (must be 'candlestick' or 'line')", c.Charts.Style)
	}
	return nil
}
