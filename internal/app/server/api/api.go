// GET    /api/v1/health
// POST   /api/v1/tables/{table}/records      (Idempotency-Key опционален)
// PATCH  /api/v1/tables/{table}/records/{id}
// DELETE /api/v1/tables/{table}/records/{id}
// POST   /api/v1/tables/{table}/query

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	healthAPI "hostdesk/internal/app/server/api/http/health"
	"hostdesk/internal/app/server/api/http/middleware"
	"hostdesk/internal/app/server/api/http/middleware/logger"
	recordsAPI "hostdesk/internal/app/server/api/http/records"
	"hostdesk/internal/domain/records"
)

type Handlers struct {
	Health  *healthAPI.Handler
	Records *recordsAPI.Handler
}

// New создаёт *chi.Mux со всеми операциями, зарегистрированными через huma
func New(service records.Servicer, db healthAPI.Pinger, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Hostdesk Remote Store API", "1.0.0")
	API := humachi.New(mux, config)

	h := handlers(service, db, log)
	h.Health.SetupRoutes(API)
	h.Records.SetupRoutes(API)

	return mux
}

func handlers(service records.Servicer, db healthAPI.Pinger, log *slog.Logger) *Handlers {
	middlewares := middleware.NewContainer(logger.New(log).Middleware())

	healthHandler := healthAPI.NewHandler(db, log, middlewares.For())
	recordsHandler := recordsAPI.NewHandler(service, log, middlewares.For())

	return &Handlers{
		Health:  healthHandler,
		Records: recordsHandler,
	}
}
