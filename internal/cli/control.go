package cli

import (
	"github.com/spf13/cobra"

	apperrors "lean-dashboard/internal/errors"
)

// addControlCommands adds engine container control.
func addControlCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStopCmd(app))
}

func newStopCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a session's engine container",
		Long: `Stop the docker container running a session's engine.

The container id comes from the session's config file. Failures degrade to a
reason string; this command never kills processes directly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sessionID := resolveSession(cmd, app)
			if sessionID == "" {
				return apperrors.Wrapf(apperrors.ErrSessionNotFound, "nothing under %s", app.Locator.LiveRoot())
			}

			status := app.Locator.Status(sessionID)
			if status.Container == "" {
				output.Warning("Session %s has no recorded container id", sessionID)
				return nil
			}
			if !status.Running {
				output.Dim("Container %s is not running", truncate(status.Container, 12))
				return nil
			}

			if force, _ := cmd.Flags().GetBool("yes"); !force {
				output.Warning("Stopping the container halts live trading for %s.", sessionID)
				output.Println("Re-run with --yes to confirm.")
				return nil
			}

			ok, reason := app.Locator.TerminateContainer(status.Container)
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"session":   sessionID,
					"container": status.Container,
					"stopped":   ok,
					"reason":    reason,
				})
			}
			if !ok {
				output.Error("Stop failed: %s", reason)
				return nil
			}
			output.Success("Container %s stopped", truncate(status.Container, 12))
			return nil
		},
	}
	cmd.Flags().String("session", "", "session id (default: newest)")
	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	return cmd
}
