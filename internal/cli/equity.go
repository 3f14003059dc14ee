package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"lean-dashboard/internal/dashboard"
	"lean-dashboard/internal/equity"
	"lean-dashboard/internal/metrics"
	"lean-dashboard/internal/models"
	"lean-dashboard/pkg/utils"
)

// addEquityCommands adds the equity curve views and the CSV export.
func addEquityCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newEquityCmd(app))
}

func newEquityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equity",
		Short: "Show the reconstructed equity curve",
		Long: `Reconstruct the equity curve from the session's chart dump files.

Each dump contributes one point: cash total plus holdings value, with cash
and prices carried forward across dumps that omit them. Points before the
first position are suppressed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			series, tag := loadEquitySeries(cmd, app, output)

			if drawdown, _ := cmd.Flags().GetBool("drawdown"); drawdown {
				return renderDrawdown(output, tag, metrics.Drawdown(series))
			}
			if returns, _ := cmd.Flags().GetBool("returns"); returns {
				period, _ := cmd.Flags().GetInt("period")
				return renderReturns(output, tag, metrics.PeriodReturns(series, period))
			}
			tail, _ := cmd.Flags().GetInt("tail")
			return renderEquity(output, tag, series, tail)
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	cmd.Flags().Bool("all", false, "merge the equity of every session")
	cmd.Flags().Bool("cached", false, "read the persisted equity cache instead of reconstructing")
	cmd.Flags().Bool("drawdown", false, "show the drawdown series")
	cmd.Flags().Bool("returns", false, "show rolling period returns")
	cmd.Flags().Int("period", dashboard.DefaultReturnDays, "rolling return period in days")
	cmd.Flags().Int("tail", 20, "number of most recent points to print")

	cmd.AddCommand(newEquityExportCmd(app))
	cmd.AddCommand(newEquityHistoryCmd(app))
	return cmd
}

// loadEquitySeries resolves the source of the series: demo fixtures, the
// persisted cache, or a fresh reconstruction over one or all sessions.
func loadEquitySeries(cmd *cobra.Command, app *App, output *Output) ([]models.EquityPoint, string) {
	if app.Config.Dashboard.ExampleMode {
		return app.Demo.Equity(), output.SourceTag(SourceDemo)
	}

	sessionID := resolveSession(cmd, app)
	if sessionID == "" {
		return nil, output.SourceTag(SourceLive)
	}
	sessionPath := app.Locator.Resolve(sessionID)

	if cached, _ := cmd.Flags().GetBool("cached"); cached {
		points := app.Cache.Load(sessionPath)
		series := make([]models.EquityPoint, 0, len(points))
		for _, pt := range points {
			series = append(series, models.FlatPoint(pt.Datetime, pt.Close))
		}
		return series, output.SourceTag(SourceCache)
	}

	paths := []string{sessionPath}
	if all, _ := cmd.Flags().GetBool("all"); all {
		paths = paths[:0]
		for _, s := range app.Locator.ListSessions() {
			if p := app.Locator.Resolve(s); p != "" {
				paths = append(paths, p)
			}
		}
	}
	return equity.Reconstruct(app.Parser, paths), output.SourceTag(SourceLive)
}

func renderEquity(output *Output, tag string, series []models.EquityPoint, tail int) error {
	if output.IsJSON() {
		return output.JSON(series)
	}
	if len(series) == 0 {
		output.Warning("No equity points")
		return nil
	}

	first, last := series[0], series[len(series)-1]
	output.Printf("%s ", tag)
	output.Bold("Equity (%d points)", len(series))
	output.Printf("  From:   %s  %s\n", first.Datetime.Format("2006-01-02 15:04:05"), utils.FormatUSD(first.Close))
	output.Printf("  To:     %s  %s\n", last.Datetime.Format("2006-01-02 15:04:05"), utils.FormatUSD(last.Close))
	output.Printf("  Change: %s\n", output.FormatPnL(last.Close-first.Close))
	if first.Close != 0 {
		output.Printf("  Return: %s\n", output.FormatPercent((last.Close/first.Close-1)*100))
	}
	output.Println()

	table := NewTable(output, "TIME", "CLOSE")
	for _, pt := range tailPoints(series, tail) {
		table.AddRow(pt.Datetime.Format("2006-01-02 15:04:05"), utils.FormatUSD(pt.Close))
	}
	table.Render()
	return nil
}

func renderDrawdown(output *Output, tag string, series []models.DrawdownPoint) error {
	if output.IsJSON() {
		return output.JSON(series)
	}
	if len(series) == 0 {
		output.Warning("No drawdown points")
		return nil
	}

	worst := series[0]
	for _, pt := range series {
		if pt.Drawdown < worst.Drawdown {
			worst = pt
		}
	}
	output.Printf("%s %s ", tag, output.SourceTag(SourceCalc))
	output.Bold("Drawdown")
	output.Printf("  Worst:   %s at %s\n", output.FormatPercent(worst.Drawdown), worst.Datetime.Format("2006-01-02 15:04:05"))
	output.Printf("  Current: %s\n", output.FormatPercent(series[len(series)-1].Drawdown))
	output.Println()

	table := NewTable(output, "TIME", "CLOSE", "PEAK", "DRAWDOWN")
	for i := len(series) - min(len(series), 20); i < len(series); i++ {
		pt := series[i]
		table.AddRow(
			pt.Datetime.Format("2006-01-02 15:04:05"),
			utils.FormatUSD(pt.Close),
			utils.FormatUSD(pt.Peak),
			output.FormatPercent(pt.Drawdown),
		)
	}
	table.Render()
	return nil
}

func renderReturns(output *Output, tag string, series []models.ReturnPoint) error {
	if output.IsJSON() {
		return output.JSON(series)
	}
	if len(series) == 0 {
		output.Warning("No return points")
		return nil
	}

	output.Printf("%s %s ", tag, output.SourceTag(SourceCalc))
	output.Bold("Rolling Returns (%d days)", len(series))
	output.Println()

	table := NewTable(output, "DAY", "CLOSE", "PERIOD", "CUMULATIVE")
	for _, pt := range series {
		table.AddRow(
			pt.Datetime.Format("2006-01-02"),
			utils.FormatUSD(pt.Close),
			output.FormatPercent(pt.PeriodReturn),
			output.FormatPercent(pt.CumReturn),
		)
	}
	table.Render()
	return nil
}

// equityCSVRow is the CSV export schema.
type equityCSVRow struct {
	Datetime string  `csv:"datetime"`
	Open     float64 `csv:"open"`
	High     float64 `csv:"high"`
	Low      float64 `csv:"low"`
	Close    float64 `csv:"close"`
}

func newEquityExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export the equity curve to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			series, _ := loadEquitySeries(cmd, app, output)
			if len(series) == 0 {
				return fmt.Errorf("no equity points to export")
			}

			rows := make([]*equityCSVRow, 0, len(series))
			for _, pt := range series {
				rows = append(rows, &equityCSVRow{
					Datetime: pt.Datetime.Format(time.RFC3339),
					Open:     pt.Open,
					High:     pt.High,
					Low:      pt.Low,
					Close:    pt.Close,
				})
			}

			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer file.Close()

			if err := gocsv.MarshalFile(&rows, file); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
			output.Success("Exported %d points to %s", len(rows), args[0])
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	cmd.Flags().Bool("all", false, "merge the equity of every session")
	cmd.Flags().Bool("cached", false, "read the persisted equity cache instead of reconstructing")
	return cmd
}

func newEquityHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived equity points from the local archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Archive == nil {
				return fmt.Errorf("archive unavailable")
			}

			sessionID := resolveSession(cmd, app)
			if sessionID == "" {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}

			var from, to time.Time
			if v, _ := cmd.Flags().GetString("from"); v != "" {
				parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
				from = parsed
			}
			if v, _ := cmd.Flags().GetString("to"); v != "" {
				parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --to date: %w", err)
				}
				to = parsed
			}

			series, err := app.Archive.GetEquityPoints(cmd.Context(), sessionID, from, to)
			if err != nil {
				return err
			}
			return renderEquity(output, output.SourceTag(SourceCache), series, 20)
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	return cmd
}

func tailPoints(series []models.EquityPoint, n int) []models.EquityPoint {
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}
