// Package cliutil - общие помощники подкоманд: доступ к приложению и вывод.
package cliutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hostdesk/internal/app/client"
	"hostdesk/internal/domain/mutation"
)

type appKey struct{}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// WithApp кладёт приложение в контекст команды
func WithApp(ctx context.Context, app *client.App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// App достаёт приложение, созданное в PersistentPreRunE
func App(cmd *cobra.Command) (*client.App, error) {
	app, _ := cmd.Context().Value(appKey{}).(*client.App)
	if app == nil {
		return nil, errors.New("приложение не инициализировано")
	}
	return app, nil
}

// JSON печатает v в формате JSON
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintOutcome сообщает, применена мутация сразу или ждёт синхронизации
func PrintOutcome(w io.Writer, what string, out client.Outcome) {
	if out.Applied {
		fmt.Fprintf(w, "%s %s сохранено на сервере\n", green("✓"), what)
		return
	}
	if out.Queued != nil {
		fmt.Fprintf(w, "%s %s сохранено локально, будет отправлено при появлении связи %s\n",
			yellow("⏳"), what, faint("("+out.Queued.LocalID+")"))
	}
}

// PrintReport печатает итог прогона синхронизации
func PrintReport(w io.Writer, r client.Report) {
	mark := green("✓")
	if r.FailCount > 0 {
		mark = yellow("!")
	}
	fmt.Fprintf(w, "%s %s %s\n", mark, r.Summary(), faint(r.Duration.Round(time.Millisecond).String()))

	for _, f := range r.Failures {
		reason := "ошибка связи"
		if f.Rejected {
			reason = "отклонено сервером"
		}
		if f.DeadLettered {
			reason = "перемещено в failed"
		}
		fmt.Fprintf(w, "  %s %s %s: %s\n", red("•"), f.Kind, faint(f.LocalID), reason)
		fmt.Fprintf(w, "    %s\n", f.Error)
	}
}

// PrintMutations печатает элементы очереди
func PrintMutations(w io.Writer, items []mutation.QueuedMutation) {
	if len(items) == 0 {
		fmt.Fprintln(w, faint("очередь пуста"))
		return
	}
	for _, m := range items {
		fmt.Fprintf(w, "%s  %-18s %s  попыток: %d\n",
			m.LocalID, m.Kind, m.EnqueuedAt.Format("2006-01-02 15:04:05"), m.Attempts)
		if m.LastError != "" {
			fmt.Fprintf(w, "    %s\n", red(m.LastError))
		}
	}
}

// NetworkLabel - цветная подпись состояния сети
func NetworkLabel(s client.NetworkState) string {
	if s == client.Online {
		return green(s.String())
	}
	return yellow(s.String())
}
