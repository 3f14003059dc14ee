package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperrors "lean-dashboard/internal/errors"
	"lean-dashboard/internal/models"
	"lean-dashboard/pkg/utils"
)

// addOrderCommands adds order-event, insight and sell-order commands.
func addOrderCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newOrdersCmd(app))
	rootCmd.AddCommand(newInsightsCmd(app))
	rootCmd.AddCommand(newSellCmd(app))
}

func newOrdersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show recent order events",
		Long:  "Display the engine's order events, newest first. Events are display-only and never reconciled.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			limit, _ := cmd.Flags().GetInt("limit")

			var events []models.OrderEvent
			tag := output.SourceTag(SourceLive)
			if app.Config.Dashboard.ExampleMode {
				events = app.Demo.Orders()
				tag = output.SourceTag(SourceDemo)
			} else {
				sessionID := resolveSession(cmd, app)
				if sessionID == "" {
					output.Warning("No sessions found under %s", app.Locator.LiveRoot())
					return nil
				}
				loaded, out := app.Parser.LoadOrderEvents(app.Locator.Resolve(sessionID))
				if !out.IsOK() {
					output.Warning("No order events for %s", sessionID)
					return nil
				}
				events = loaded
			}

			if limit > 0 && len(events) > limit {
				events = events[:limit]
			}
			if output.IsJSON() {
				return output.JSON(events)
			}
			if len(events) == 0 {
				output.Warning("No order events")
				return nil
			}

			output.Printf("%s ", tag)
			output.Bold("Order Events (%d)", len(events))
			table := NewTable(output, "TIME", "SYMBOL", "DIR", "STATUS", "FILL QTY", "FILL PRICE")
			for _, ev := range events {
				dir := ev.Direction
				if strings.EqualFold(dir, "buy") {
					dir = output.Green(dir)
				} else if strings.EqualFold(dir, "sell") {
					dir = output.Red(dir)
				}
				table.AddRow(
					formatEventTime(ev.Time),
					ev.Symbol,
					dir,
					ev.Status,
					utils.FormatQuantity(ev.FillQuantity),
					utils.FormatUSD(ev.FillPrice),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	cmd.Flags().Int("limit", 50, "maximum events to show")
	return cmd
}

func newInsightsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show alpha insights emitted by the strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var insights []models.Insight
			tag := output.SourceTag(SourceLive)
			if app.Config.Dashboard.ExampleMode {
				insights = app.Demo.Insights()
				tag = output.SourceTag(SourceDemo)
			} else {
				sessionID := resolveSession(cmd, app)
				if sessionID == "" {
					output.Warning("No sessions found under %s", app.Locator.LiveRoot())
					return nil
				}
				insights, _ = app.Parser.LoadInsights(app.Locator.Resolve(sessionID))
			}

			if output.IsJSON() {
				return output.JSON(insights)
			}
			if len(insights) == 0 {
				output.Warning("No insights")
				return nil
			}

			output.Printf("%s ", tag)
			output.Bold("Insights (%d)", len(insights))
			table := NewTable(output, "GENERATED", "SYMBOL", "DIRECTION", "CONFIDENCE", "MAGNITUDE")
			for _, in := range insights {
				table.AddRow(
					formatUTCString(in.GeneratedTimeUTC),
					in.Symbol,
					in.Direction,
					formatFloat(in.Confidence),
					formatFloat(in.Magnitude),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	return cmd
}

func newSellCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sell <symbol>",
		Short: "Queue an out-of-band sell order",
		Long: `Append a sell instruction to the session's commands folder.

The engine consumes the file on its own schedule; this command only queues
the instruction and never talks to a broker.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sessionID := resolveSession(cmd, app)
			if sessionID == "" {
				return apperrors.Wrapf(apperrors.ErrSessionNotFound, "nothing under %s", app.Locator.LiveRoot())
			}

			var quantity *int
			if q, _ := cmd.Flags().GetInt("quantity"); q != 0 {
				quantity = &q
			}
			var limitPrice *float64
			if p, _ := cmd.Flags().GetFloat64("limit"); p != 0 {
				limitPrice = &p
			}

			order, err := app.Locator.WriteSellOrder(sessionID, args[0], quantity, limitPrice)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(order)
			}
			output.Success("Sell order queued for %s", order.Symbol)
			output.Dim("Order id: %s", order.ID)
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	cmd.Flags().Int("quantity", 0, "quantity to sell (0 = liquidate full position)")
	cmd.Flags().Float64("limit", 0, "limit price (0 = market)")

	cmd.AddCommand(newSellPendingCmd(app))
	cmd.AddCommand(newSellClearCmd(app))
	return cmd
}

func newSellPendingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show sell orders not yet consumed by the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sessionID := resolveSession(cmd, app)
			if sessionID == "" {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}

			orders := app.Locator.PendingSellOrders(sessionID)
			if output.IsJSON() {
				return output.JSON(orders)
			}
			if len(orders) == 0 {
				output.Dim("No pending sell orders for %s", sessionID)
				return nil
			}
			table := NewTable(output, "ID", "SYMBOL", "QUANTITY", "LIMIT")
			for _, order := range orders {
				qty := "all"
				if order.Quantity != nil {
					qty = fmt.Sprintf("%d", *order.Quantity)
				}
				limit := "market"
				if order.LimitPrice != nil {
					limit = formatFloat(*order.LimitPrice)
				}
				table.AddRow(truncate(order.ID, 8), order.Symbol, qty, limit)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	return cmd
}

func newSellClearCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all pending sell orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sessionID := resolveSession(cmd, app)
			if sessionID == "" {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}
			app.Locator.ClearSellOrders(sessionID)
			output.Success("Pending sell orders cleared for %s", sessionID)
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	return cmd
}
