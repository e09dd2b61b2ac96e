package queue

import (
	"fmt"

	"github.com/spf13/cobra"

	"hostdesk/cmd/client/cmd/cliutil"
	"hostdesk/internal/domain/mutation"
)

var QueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Локальная очередь изменений",
}

var showFailed bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать ожидающие (или failed) изменения",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cliutil.App(cmd)
		if err != nil {
			return err
		}

		var items []mutation.QueuedMutation
		if showFailed {
			items, err = app.Failed(cmd.Context())
		} else {
			items, err = app.Pending(cmd.Context())
		}
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return cliutil.JSON(cmd.OutOrStdout(), items)
		}
		cliutil.PrintMutations(cmd.OutOrStdout(), items)
		return nil
	},
}

var requeueCmd = &cobra.Command{
	Use:   "requeue <local-id>",
	Short: "Вернуть failed-изменение в очередь",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cliutil.App(cmd)
		if err != nil {
			return err
		}

		kind, err := app.Requeue(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s возвращено в очередь\n", kind, args[0])
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&showFailed, "failed", false, "показать изменения, отклонённые окончательно")

	QueueCmd.AddCommand(listCmd)
	QueueCmd.AddCommand(requeueCmd)
}
