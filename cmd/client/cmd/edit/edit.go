package edit

import (
	"fmt"

	"github.com/spf13/cobra"

	"hostdesk/cmd/client/cmd/cliutil"
	"hostdesk/internal/domain/mutation"
)

var updates map[string]string

// EditCmd частично обновляет любую запись
var EditCmd = &cobra.Command{
	Use:     "edit <table> <id>",
	Short:   "Изменить поля записи",
	Example: `  hostdesk edit bookings 12 --set notes="поздний заезд" --set adults=3`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cliutil.App(cmd)
		if err != nil {
			return err
		}

		e := mutation.FieldEdit{
			TableName:    args[0],
			TargetID:     args[1],
			FieldUpdates: make(map[string]any, len(updates)),
		}
		for k, v := range updates {
			e.FieldUpdates[k] = v
		}

		out, err := app.EditFields(cmd.Context(), e)
		if err != nil {
			return err
		}
		cliutil.PrintOutcome(cmd.OutOrStdout(), fmt.Sprintf("Запись %s/%s", e.TableName, e.TargetID), out)
		return nil
	},
}

func init() {
	EditCmd.Flags().StringToStringVar(&updates, "set", nil, "новое значение поля key=value")
	_ = EditCmd.MarkFlagRequired("set")
}
