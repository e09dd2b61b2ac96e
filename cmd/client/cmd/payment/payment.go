package payment

import (
	"fmt"

	"github.com/spf13/cobra"

	"hostdesk/cmd/client/cmd/cliutil"
	"hostdesk/internal/domain/mutation"
)

// PaymentCmd - родительская команда реестра платежей
var PaymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Платежи",
}

var p mutation.Payment

var addCmd = &cobra.Command{
	Use:     "add",
	Short:   "Записать платёж по бронированию",
	Example: `  hostdesk payment add --booking-id HST25ABCDE2 --amount 5000 --method cash`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cliutil.App(cmd)
		if err != nil {
			return err
		}

		out, err := app.RecordPayment(cmd.Context(), p)
		if err != nil {
			return err
		}
		cliutil.PrintOutcome(cmd.OutOrStdout(), fmt.Sprintf("Платёж %.2f по %s", p.Amount, p.BookingID), out)
		return nil
	},
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&p.BookingID, "booking-id", "", "номер бронирования")
	f.Float64Var(&p.Amount, "amount", 0, "сумма")
	f.StringVar(&p.PaymentDate, "date", "", "дата платежа YYYY-MM-DD (по умолчанию сегодня)")
	f.StringVar(&p.Method, "method", "", "способ оплаты")
	f.StringVar(&p.Recipient, "recipient", "", "получатель")
	_ = addCmd.MarkFlagRequired("booking-id")
	_ = addCmd.MarkFlagRequired("amount")

	PaymentCmd.AddCommand(addCmd)
}
