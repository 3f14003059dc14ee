package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lean-dashboard/internal/dashboard"
	"lean-dashboard/pkg/utils"
)

// addWatchCommands adds the continuous dashboard view.
func addWatchCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newWatchCmd(app))
}

func newWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously refresh and render the dashboard",
		Long: `Run the poll loop: one synchronous read-compute pass over the session
files per refresh interval, rendered as a full-screen summary. Ctrl-C exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			refresher := dashboard.NewRefresher(
				app.Config, app.Locator, app.Cache, app.Archive, app.Demo, app.Logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-signals
				cancel()
			}()

			if once, _ := cmd.Flags().GetBool("once"); once {
				renderRefresh(output, app, refresher.RefreshOnce(ctx))
				return nil
			}

			refresher.Run(ctx, func(result dashboard.RefreshResult) {
				if !output.IsJSON() {
					// ANSI clear-screen between cycles
					output.Print("\033[2J\033[H")
				}
				renderRefresh(output, app, result)
			})
			return nil
		},
	}
	cmd.Flags().Bool("once", false, "render a single refresh cycle and exit")
	return cmd
}

func renderRefresh(output *Output, app *App, result dashboard.RefreshResult) {
	if output.IsJSON() {
		output.JSON(result)
		return
	}

	tag := output.SourceTag(SourceLive)
	if result.DemoMode {
		tag = output.SourceTag(SourceDemo)
	}
	output.Printf("%s ", tag)
	output.Bold("Session %s", result.Session)
	output.Dim("Refreshed %s, %d sessions discovered",
		result.GeneratedAt.Format("15:04:05"), len(result.Sessions))
	output.Println()

	account := result.Account
	output.Printf("Cash %s  Invested %s  Equity %s  Unrealized %s\n",
		utils.FormatUSD(account.CashTotal),
		utils.FormatUSD(account.Invested),
		utils.FormatUSD(account.Equity),
		output.FormatPnL(account.Unrealized))

	if len(result.Equity) > 0 {
		first := result.Equity[0]
		last := result.Equity[len(result.Equity)-1]
		output.Printf("Equity curve: %d points, %s", len(result.Equity), output.FormatPnL(last.Close-first.Close))
		if first.Close != 0 {
			output.Printf(" (%s)", output.FormatPercent((last.Close/first.Close-1)*100))
		}
		output.Println()
	}
	if len(result.Drawdown) > 0 && app.Config.Charts.ShowDrawdown {
		output.Printf("Drawdown: %s\n", output.FormatPercent(result.Drawdown[len(result.Drawdown)-1].Drawdown))
	}
	if len(result.Benchmark) > 0 && app.Config.Charts.ShowBenchmark {
		output.Printf("Benchmark: %s\n", formatFloat(result.Benchmark[len(result.Benchmark)-1].Close))
	}

	stats := result.ServerStats
	if stats.Uptime != "" || stats.RAMTotal > 0 {
		output.Printf("CPU %d%%  RAM %d/%d MB  Uptime %s\n",
			stats.CPUPercent, stats.RAMUsed, stats.RAMTotal, stats.Uptime)
	}

	if len(account.Positions) > 0 {
		output.Println()
		table := NewTable(output, "SYMBOL", "QTY", "PRICE", "VALUE", "UNREAL")
		for _, pos := range account.Positions {
			table.AddRow(
				pos.Symbol,
				utils.FormatQuantity(pos.Quantity),
				utils.FormatUSD(pos.Price),
				utils.FormatUSD(pos.Value),
				output.FormatPnL(pos.Unrealized),
			)
		}
		table.Render()
	}

	if len(result.Orders) > 0 {
		output.Println()
		output.Bold("Recent Orders")
		limit := 5
		if len(result.Orders) < limit {
			limit = len(result.Orders)
		}
		for _, ev := range result.Orders[:limit] {
			output.Printf("  %s  %-6s %-4s %s @ %s\n",
				formatEventTime(ev.Time), ev.Symbol, ev.Direction,
				utils.FormatQuantity(ev.FillQuantity), utils.FormatUSD(ev.FillPrice))
		}
	}

	if len(result.Errors) > 0 {
		output.Println()
		output.Error("Recent errors (%d):", len(result.Errors))
		limit := 3
		if len(result.Errors) < limit {
			limit = len(result.Errors)
		}
		for _, line := range result.Errors[len(result.Errors)-limit:] {
			output.Printf("  %s\n", output.Red(truncate(line, 120)))
		}
	}
}
