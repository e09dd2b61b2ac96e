package booking

import (
	"github.com/spf13/cobra"

	"hostdesk/cmd/client/cmd/cliutil"
	"hostdesk/internal/domain/mutation"
)

// BookingCmd - родительская команда операций с бронированиями
var BookingCmd = &cobra.Command{
	Use:   "booking",
	Short: "Бронирования",
}

var (
	res   mutation.Reservation
	extra map[string]string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Создать или обновить бронирование",
	Long: `Без --record-id создаётся новое бронирование, с ним - обновляется существующая запись.
paid_amount и payment_status не задаются: они пересчитываются по платежам.`,
	Example: `  hostdesk booking save --booking-id HST25ABCDE2 --guest "Ivan" --check-in 2025-03-01 --check-out 2025-03-05 --total 10000`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cliutil.App(cmd)
		if err != nil {
			return err
		}

		r := res
		if len(extra) > 0 {
			r.Extra = make(map[string]any, len(extra))
			for k, v := range extra {
				r.Extra[k] = v
			}
		}

		out, err := app.SaveReservation(cmd.Context(), r)
		if err != nil {
			return err
		}
		cliutil.PrintOutcome(cmd.OutOrStdout(), "Бронирование "+r.BookingID, out)
		return nil
	},
}

func init() {
	f := saveCmd.Flags()
	f.StringVar(&res.RecordID, "record-id", "", "id строки на сервере (для обновления)")
	f.StringVar(&res.BookingID, "booking-id", "", "номер бронирования")
	f.StringVar(&res.PropertyID, "property", "", "объект размещения")
	f.StringVar(&res.GuestName, "guest", "", "имя гостя")
	f.StringVar(&res.GuestPhone, "phone", "", "телефон гостя")
	f.StringVar(&res.CheckIn, "check-in", "", "дата заезда YYYY-MM-DD")
	f.StringVar(&res.CheckOut, "check-out", "", "дата выезда YYYY-MM-DD")
	f.Float64Var(&res.TotalAmount, "total", 0, "полная стоимость")
	f.Float64Var(&res.OTAServiceFee, "ota-fee", 0, "комиссия площадки")
	f.StringVar(&res.BookingSource, "source", "", "источник бронирования")
	f.StringVar(&res.Notes, "notes", "", "заметки")
	f.StringToStringVar(&extra, "set", nil, "дополнительные поля key=value")
	_ = saveCmd.MarkFlagRequired("booking-id")

	BookingCmd.AddCommand(saveCmd)
}
