package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lean-dashboard/internal/config"
	"lean-dashboard/internal/demo"
	"lean-dashboard/internal/logging"
	"lean-dashboard/internal/session"
	"lean-dashboard/internal/snapshot"
	"lean-dashboard/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Locator *session.Locator
	Parser  snapshot.Parser
	Cache   *store.EquityCache
	Archive store.Archive
	Demo    *demo.Loader
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Locator: session.NewLocator(cfg.Paths.LiveRoot, logger),
		Parser:  snapshot.NewParser(logger),
		Cache:   store.NewEquityCache(cfg.Dashboard.CacheMaxPoints, logger),
		Demo:    demo.NewLoader(cfg.Paths.ExampleDataDir, logger),
	}

	// Initialize the sqlite archive; the dashboard runs fine without it.
	archive, err := store.NewArchiveStore(cfg.Paths.ArchivePath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize archive, history queries unavailable")
	} else {
		app.Archive = archive
		logger.Debug().Str("path", cfg.Paths.ArchivePath).Msg("SQLite archive initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Read-only operational dashboard for live algorithmic trading sessions",
		Long: `Dashboard monitors the result files a live trading engine writes to disk.

It reconstructs the equity curve from chart dumps, aggregates account state,
scrapes the engine log for resource and margin data, and exposes an
out-of-band sell-order command channel. It never talks to a broker and never
modifies the engine's own files.

Use 'dashboard help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/lean-dashboard)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addSessionCommands(rootCmd, app)
	addAccountCommands(rootCmd, app)
	addEquityCommands(rootCmd, app)
	addLogCommands(rootCmd, app)
	addOrderCommands(rootCmd, app)
	addControlCommands(rootCmd, app)
	addWatchCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Dashboard v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Paths")
	output.Printf("  Live Root:       %s\n", cfg.Paths.LiveRoot)
	output.Printf("  Example Data:    %s\n", cfg.Paths.ExampleDataDir)
	output.Printf("  Archive:         %s\n", cfg.Paths.ArchivePath)
	output.Println()

	output.Bold("Dashboard")
	output.Printf("  Refresh Rate:    %ds\n", cfg.Dashboard.RefreshRate)
	output.Printf("  Log Lines:       %d\n", cfg.Dashboard.LogLines)
	output.Printf("  Cache Points:    %d\n", cfg.Dashboard.CacheMaxPoints)
	output.Printf("  Example Mode:    %v\n", cfg.Dashboard.ExampleMode)
	output.Printf("  Currency:        %s\n", cfg.Dashboard.AccountCurrency)
	output.Println()

	output.Bold("Charts")
	output.Printf("  Style:           %s\n", cfg.Charts.Style)
	output.Printf("  Inline:          %v\n", cfg.Charts.Inline)
	output.Printf("  Show Benchmark:  %v\n", cfg.Charts.ShowBenchmark)
	output.Printf("  Show Drawdown:   %v\n", cfg.Charts.ShowDrawdown)
}

// resolveSession picks the session to operate on: the --session flag when
// given, else the newest session under the live root.
func resolveSession(cmd *cobra.Command, app *App) string {
	if selected, _ := cmd.Flags().GetString("session"); selected != "" {
		return selected
	}
	sessions := app.Locator.ListSessions()
	if len(sessions) == 0 {
		return ""
	}
	return sessions[0]
}
