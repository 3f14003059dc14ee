package cli

import (
	"github.com/spf13/cobra"

	"lean-dashboard/internal/models"
)

// addLogCommands adds the log tail and log-derived views.
func addLogCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newLogsCmd(app))
}

func newLogsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the engine log tail",
		Long:  "Tail the session's engine log with infrastructure noise filtered out.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			lines, _ := cmd.Flags().GetInt("lines")
			if lines <= 0 {
				lines = app.Config.Dashboard.LogLines
			}

			if app.Config.Dashboard.ExampleMode {
				tail := app.Demo.Logs()
				if len(tail) > lines {
					tail = tail[len(tail)-lines:]
				}
				if output.IsJSON() {
					return output.JSON(tail)
				}
				for _, line := range tail {
					output.Println(line)
				}
				return nil
			}

			sessionID := resolveSession(cmd, app)
			if sessionID == "" {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}
			sessionPath := app.Locator.Resolve(sessionID)

			tail, out := app.Parser.LogTail(sessionPath, lines)
			if !out.IsOK() {
				output.Warning("Log unavailable for %s: %s", sessionID, out.String())
				return nil
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"session": sessionID, "tail": tail})
			}
			output.Println(tail)
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	cmd.Flags().Int("lines", 0, "number of lines (default: configured log_lines)")

	cmd.AddCommand(newLogsErrorsCmd(app))
	cmd.AddCommand(newLogsStatsCmd(app))
	cmd.AddCommand(newLogsMarginCmd(app))
	cmd.AddCommand(newLogsBenchmarkCmd(app))
	return cmd
}

func newLogsErrorsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "errors",
		Short: "Show recent error lines from the engine log",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sessionID := resolveSession(cmd, app)
			if sessionID == "" {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}

			errors := app.Parser.RecentErrors(app.Locator.Resolve(sessionID), 500)
			if output.IsJSON() {
				return output.JSON(errors)
			}
			if len(errors) == 0 {
				output.Success("No recent errors in %s", sessionID)
				return nil
			}
			for _, line := range errors {
				output.Error("%s", line)
			}
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	return cmd
}

func newLogsStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show server resource usage scraped from the engine log",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var stats models.ServerStats
			tag := output.SourceTag(SourceLive)
			if app.Config.Dashboard.ExampleMode {
				stats = app.Demo.ServerStats()
				tag = output.SourceTag(SourceDemo)
			} else {
				sessionID := resolveSession(cmd, app)
				if sessionID == "" {
					output.Warning("No sessions found under %s", app.Locator.LiveRoot())
					return nil
				}
				stats = app.Parser.ServerStats(app.Locator.Resolve(sessionID))
			}

			if output.IsJSON() {
				return output.JSON(stats)
			}
			output.Printf("%s ", tag)
			output.Bold("Server Stats")
			output.Printf("  CPU:     %d%%\n", stats.CPUPercent)
			output.Printf("  RAM:     %d / %d MB\n", stats.RAMUsed, stats.RAMTotal)
			output.Printf("  Uptime:  %s\n", stats.Uptime)
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	return cmd
}

func newLogsMarginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "margin",
		Short: "Show margin observations scraped from the engine log",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sessionID := resolveSession(cmd, app)
			if sessionID == "" {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}

			series := app.Parser.MarginSeries(app.Locator.Resolve(sessionID))
			if output.IsJSON() {
				return output.JSON(series)
			}
			if len(series) == 0 {
				output.Warning("No margin observations in %s", sessionID)
				return nil
			}
			table := NewTable(output, "TIME", "USED", "REMAINING")
			for _, pt := range series {
				table.AddRow(
					pt.Datetime.Format("2006-01-02 15:04:05"),
					output.Yellow(formatFloat(pt.Used)),
					formatFloat(pt.Remaining),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	return cmd
}

func newLogsBenchmarkCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Show the reference-index price series",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var series []models.BenchmarkPoint
			tag := output.SourceTag(SourceLive)
			if app.Config.Dashboard.ExampleMode {
				series = app.Demo.Benchmarks()
				tag = output.SourceTag(SourceDemo)
			} else {
				sessionID := resolveSession(cmd, app)
				if sessionID == "" {
					output.Warning("No sessions found under %s", app.Locator.LiveRoot())
					return nil
				}
				series = app.Parser.BenchmarkSeries(app.Locator.Resolve(sessionID))
			}

			if output.IsJSON() {
				return output.JSON(series)
			}
			if len(series) == 0 {
				output.Warning("No benchmark points")
				return nil
			}
			output.Printf("%s ", tag)
			output.Bold("Benchmark (%d points)", len(series))
			table := NewTable(output, "TIME", "CLOSE")
			start := 0
			if len(series) > 20 {
				start = len(series) - 20
			}
			for _, pt := range series[start:] {
				table.AddRow(pt.Datetime.Format("2006-01-02 15:04:05"), formatFloat(pt.Close))
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	return cmd
}
