// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "lean-dashboard", "logs", "dashboard.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	// Console writer
	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	if len(writers) == 0 {
		writer = os.Stderr
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer).
		With().
		Timestamp().
		Logger()

	return logger
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// SetInfoLevel sets the global log level to info.
func SetInfoLevel() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// ContextKey is the type for context keys.
type ContextKey string

// LoggerKey is the context key for the logger.
const LoggerKey ContextKey = "logger"

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithSession adds a session id to the logger context.
func WithSession(logger zerolog.Logger, session string) zerolog.Logger {
	return logger.With().Str("session", session).Logger()
}

// WithComponent adds a component name to the logger context.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// LogScan logs one completed snapshot scan.
func LogScan(logger zerolog.Logger, session string, files, points int) {
	logger.Debug().
		Str("event", "scan").
		Str("session", session).
		Int("files", files).
		Int("points", points).
		Msg("Snapshot scan completed")
}

// LogRefresh logs one completed refresh cycle.
func LogRefresh(logger zerolog.Logger, session string, points int, duration time.Duration) {
	logger.Info().
		Str("event", "refresh").
		Str("session", session).
		Int("equity_points", points).
		Dur("duration", duration).
		Msg("Refresh cycle completed")
}

// LogCacheAppend logs an equity cache extension.
func LogCacheAppend(logger zerolog.Logger, session string, equity float64, total int) {
	logger.Debug().
		Str("event", "cache_append").
		Str("session", session).
		Float64("equity", equity).
		Int("points", total).
		Msg("Equity cache extended")
}

// LogContainerAction logs an engine container control action.
func LogContainerAction(logger zerolog.Logger, container, action string, ok bool, reason string) {
	event := logger.Info().
		Str("event", "container").
		Str("container", container).
		Str("action", action).
		Bool("ok", ok)
	if reason != "" {
		event = event.Str("reason", reason)
	}
	event.Msg("Container action")
}
