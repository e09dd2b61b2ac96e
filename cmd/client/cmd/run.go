package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hostdesk/cmd/client/cmd/cliutil"
	"hostdesk/internal/app/client"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Фоновый агент: следит за сетью и синхронизирует очередь",
	Long: `Запускает агента, который периодически проверяет доступность сервера
и после восстановления связи автоматически отправляет накопленную очередь.
Останавливается по Ctrl+C.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cliutil.App(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		app.OnNetworkChange(func(from, to client.NetworkState) {
			fmt.Fprintf(out, "Сеть: %s → %s\n", from, cliutil.NetworkLabel(to))
		})
		app.OnSyncReport(func(r client.Report) {
			cliutil.PrintReport(out, r)
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.Run(ctx)
	},
}
