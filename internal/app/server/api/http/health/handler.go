package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db         Pinger
	log        *slog.Logger
	middleware huma.Middlewares
}

// NewHandler создаёт обработчик; db может быть nil, тогда проверяется только процесс
func NewHandler(db Pinger, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		db:         db,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

// healthCheck отвечает 503, пока база недоступна: клиент считает это отсутствием связи
func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	database := "unchecked"
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn("database is unavailable", "error", err)
			return nil, huma.Error503ServiceUnavailable("database is unavailable")
		}
		database = "up"
	}

	return &Output{
		Body: Response{
			Status:   "OK",
			Database: database,
		},
	}, nil
}
