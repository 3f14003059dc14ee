package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"lean-dashboard/internal/cli"
	"lean-dashboard/internal/config"
	"lean-dashboard/internal/logging"
)

func main() {
	// Local .env overrides are optional.
	_ = godotenv.Load()

	configDir := configDirFromArgs(os.Args[1:])
	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(logging.DefaultLogConfig())

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configDirFromArgs extracts a --config value before cobra parses flags, so
// configuration is loaded from the right place during wiring.
func configDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):]
		}
	}
	return ""
}
