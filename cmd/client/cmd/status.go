package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hostdesk/cmd/client/cmd/cliutil"
)

type statusView struct {
	Server  string `json:"server"`
	Network string `json:"network"`
	Pending int    `json:"pending"`
	Failed  int    `json:"failed"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Состояние сети и очереди",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cliutil.App(cmd)
		if err != nil {
			return err
		}

		pending, err := app.PendingCount(cmd.Context())
		if err != nil {
			return err
		}
		failed, err := app.Failed(cmd.Context())
		if err != nil {
			return err
		}

		view := statusView{
			Server:  cfg.ServerAddress,
			Network: app.NetworkState().String(),
			Pending: pending,
			Failed:  len(failed),
		}
		if jsonOutput {
			return cliutil.JSON(cmd.OutOrStdout(), view)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Сервер:    %s\n", view.Server)
		fmt.Fprintf(out, "Сеть:      %s\n", cliutil.NetworkLabel(app.NetworkState()))
		fmt.Fprintf(out, "В очереди: %d\n", view.Pending)
		if view.Failed > 0 {
			fmt.Fprintf(out, "Failed:    %d (hostdesk queue list --failed)\n", view.Failed)
		}
		return nil
	},
}
