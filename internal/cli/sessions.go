package cli

import (
	"github.com/spf13/cobra"

	"lean-dashboard/internal/session"
)

// addSessionCommands adds session discovery commands.
func addSessionCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSessionsCmd(app))
}

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List live trading sessions",
		Long:  "Discover the session directories the engine has written under the live root.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sessions := app.Locator.ListSessions()
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"live_root": app.Locator.LiveRoot(),
					"sessions":  sessions,
				})
			}
			if len(sessions) == 0 {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}
			output.Bold("Sessions (%d)", len(sessions))
			for i, s := range sessions {
				marker := " "
				if i == 0 {
					marker = output.Cyan("*")
				}
				output.Printf(" %s %s\n", marker, s)
			}
			output.Dim("* newest session, selected by default")
			return nil
		},
	}

	cmd.AddCommand(newSessionsStatusCmd(app))
	cmd.AddCommand(newSessionsCatalogCmd(app))
	cmd.AddCommand(newSessionsRootsCmd(app))
	return cmd
}

func newSessionsStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show container status for every session",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			statuses := app.Locator.StatusAll()
			if output.IsJSON() {
				return output.JSON(statuses)
			}
			if len(statuses) == 0 {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}
			table := NewTable(output, "SESSION", "CONTAINER", "STATE")
			for _, st := range statuses {
				state := output.Red("stopped")
				if st.Running {
					state = output.Green("running")
				}
				container := st.Container
				if container == "" {
					container = output.DimText("-")
					state = output.DimText("unknown")
				} else if len(container) > 12 {
					container = container[:12]
				}
				table.AddRow(st.Session, container, state)
			}
			table.Render()
			return nil
		},
	}
}

func newSessionsCatalogCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show which strategy each session runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			catalog := app.Locator.Catalog()
			if output.IsJSON() {
				return output.JSON(catalog)
			}
			if len(catalog) == 0 {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}
			table := NewTable(output, "SESSION", "STRATEGY")
			for _, entry := range catalog {
				strategy := entry.Strategy
				if strategy == "" {
					strategy = output.DimText("unknown")
				}
				table.AddRow(entry.Session, strategy)
			}
			table.Render()
			return nil
		},
	}
}

func newSessionsRootsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "Show sessions grouped by strategy root",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			rootMap := app.Locator.RootMap()
			if output.IsJSON() {
				return output.JSON(rootMap)
			}
			if len(rootMap) == 0 {
				output.Warning("No sessions found under %s", app.Locator.LiveRoot())
				return nil
			}

			// Default root first, named roots after.
			printRoot := func(root string) {
				sessions := rootMap[root]
				output.Bold("%s (%d)", root, len(sessions))
				for _, s := range sessions {
					output.Printf("  %s\n", session.MakeSessionID(root, s))
				}
			}
			if _, ok := rootMap[session.DefaultRootName]; ok {
				printRoot(session.DefaultRootName)
			}
			for _, root := range app.Locator.StrategyRoots() {
				printRoot(root)
			}
			return nil
		},
	}
}
