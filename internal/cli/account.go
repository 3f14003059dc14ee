package cli

import (
	"github.com/spf13/cobra"

	"lean-dashboard/internal/equity"
	"lean-dashboard/internal/models"
	"lean-dashboard/pkg/utils"
)

// addAccountCommands adds the account view.
func addAccountCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAccountCmd(app))
}

func newAccountCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show account state (cash, positions, equity)",
		Long:  "Aggregate the primary results file into cash total, position rows and account equity.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Config.Dashboard.ExampleMode {
				account := equity.BuildAccountSnapshot(app.Demo.Account(), app.Config.Dashboard.AccountCurrency)
				return renderAccount(output, output.SourceTag(SourceDemo), account, nil)
			}

			sessionID := resolveSession(cmd, app)
			if sessionID == "" {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}
			sessionPath := app.Locator.Resolve(sessionID)

			results, out := app.Parser.LoadResults(cmd.Context(), sessionPath)
			if !out.IsOK() {
				output.Warning("Results unavailable for %s: %s", sessionID, out.String())
			}
			account := equity.BuildAccountSnapshot(results, app.Config.Dashboard.AccountCurrency)

			var runtime map[string]string
			if results != nil {
				runtime = results.RuntimeStatistics
			}
			return renderAccount(output, output.SourceTag(SourceLive), account, runtime)
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	return cmd
}

func renderAccount(output *Output, tag string, account models.AccountSnapshot, runtime map[string]string) error {
	if output.IsJSON() {
		return output.JSON(map[string]interface{}{
			"account":            account,
			"runtime_statistics": runtime,
		})
	}

	output.Printf("%s ", tag)
	output.Bold("Account (%s)", account.AccountCurrency)
	output.Printf("  Cash:        %s\n", utils.FormatUSD(account.CashTotal))
	output.Printf("  Invested:    %s\n", utils.FormatUSD(account.Invested))
	output.Printf("  Equity:      %s\n", utils.FormatUSD(account.Equity))
	output.Printf("  Unrealized:  %s\n", output.FormatPnL(account.Unrealized))
	output.Println()

	if len(account.Positions) == 0 {
		output.Dim("No open positions")
	} else {
		table := NewTable(output, "SYMBOL", "QTY", "AVG", "PRICE", "VALUE", "UNREAL", "UNREAL%")
		for _, pos := range account.Positions {
			table.AddRow(
				pos.Symbol,
				utils.FormatQuantity(pos.Quantity),
				utils.FormatUSD(pos.AveragePrice),
				utils.FormatUSD(pos.Price),
				utils.FormatUSD(pos.Value),
				output.FormatPnL(pos.Unrealized),
				output.FormatPercent(pos.UnrealizedPct),
			)
		}
		table.Render()
	}

	if len(runtime) > 0 {
		output.Println()
		output.Bold("Runtime Statistics")
		// Engine strings are pre-formatted; display as-is.
		for _, key := range []string{"Equity", "Holdings", "Unrealized", "Fees", "Net Profit", "Return", "Volume"} {
			if value, ok := runtime[key]; ok {
				output.Printf("  %-12s %s\n", key, value)
			}
		}
	}
	return nil
}
