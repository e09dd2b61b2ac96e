package records

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"hostdesk/internal/domain/records"
)

type Handler struct {
	service    records.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service records.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.queryOp(), h.query)
}

func (h *Handler) create(ctx context.Context, input *createInput) (*recordOutput, error) {
	rec, err := h.service.Create(ctx, input.Table, input.Body.Fields, input.IdempotencyKey)
	if err != nil {
		return nil, h.toHTTPError("create", input.Table, err)
	}
	return &recordOutput{Body: recordResponse{Record: rec}}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*recordOutput, error) {
	rec, err := h.service.Update(ctx, input.Table, input.ID, input.Body.Fields)
	if err != nil {
		return nil, h.toHTTPError("update", input.Table, err)
	}
	return &recordOutput{Body: recordResponse{Record: rec}}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*struct{}, error) {
	if err := h.service.Delete(ctx, input.Table, input.ID); err != nil {
		return nil, h.toHTTPError("delete", input.Table, err)
	}
	return nil, nil
}

func (h *Handler) query(ctx context.Context, input *queryInput) (*queryOutput, error) {
	recs, err := h.service.Query(ctx, input.Table, input.Body.Filter)
	if err != nil {
		return nil, h.toHTTPError("query", input.Table, err)
	}
	return &queryOutput{Body: queryResponse{Records: recs}}, nil
}

// toHTTPError: ошибки данных клиента дают 4xx (клиент не повторяет их как сбой связи),
// всё остальное 500
func (h *Handler) toHTTPError(op, table string, err error) error {
	switch {
	case errors.Is(err, records.ErrUnknownTable), errors.Is(err, records.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case records.IsValidation(err):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, records.ErrCreateInProgress):
		return huma.Error409Conflict(err.Error())
	default:
		h.log.Error("records operation failed", "op", op, "table", table, "error", err)
		return huma.Error500InternalServerError("internal error")
	}
}
