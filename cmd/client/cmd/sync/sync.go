package sync

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hostdesk/cmd/client/cmd/cliutil"
	"hostdesk/internal/app/client"
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Отправить очередь на сервер",
	Long: `Применяет накопленные изменения в порядке: бронирования, платежи, правки.
Неудавшиеся элементы остаются в очереди до следующей синхронизации.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cliutil.App(cmd)
		if err != nil {
			return err
		}

		report, err := app.Sync(cmd.Context())
		var pe *client.PreconditionError
		if errors.As(err, &pe) {
			fmt.Fprintf(cmd.OutOrStdout(), "Синхронизация не запущена: %v\n", pe)
			return nil
		}
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return cliutil.JSON(cmd.OutOrStdout(), report)
		}
		cliutil.PrintReport(cmd.OutOrStdout(), report)
		return nil
	},
}
