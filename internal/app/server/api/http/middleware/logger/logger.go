package logger

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const idempotencyHeader = "Idempotency-Key"

// Logger пишет по строке на каждый HTTP-запрос
type Logger struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Logger {
	return &Logger{
		log: log.With(slog.String("component", "http_logger")),
	}
}

// Middleware логирует запрос после обработки. 5xx пишутся как ошибки,
// 4xx как предупреждения: это отклонённые мутации клиентов.
func (l *Logger) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		method := ctx.Method()
		path := ctx.URL().Path

		next(ctx)

		status := ctx.Status()
		attrs := []any{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", ctx.RemoteAddr()),
		}
		if key := ctx.Header(idempotencyHeader); key != "" {
			attrs = append(attrs, slog.String("idempotency_key", key))
		}

		switch {
		case status >= http.StatusInternalServerError:
			l.log.Error("HTTP request", attrs...)
		case status >= http.StatusBadRequest:
			l.log.Warn("HTTP request", attrs...)
		default:
			l.log.Info("HTTP request", attrs...)
		}
	}
}
