package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// healthCheckOp - по этому адресу клиент определяет, есть ли связь с хранилищем
func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Проверка доступности",
		Description: "200, если сервис и база доступны; 503, если база не отвечает.",
		Tags:        []string{"health"},
		Errors:      []int{http.StatusServiceUnavailable},
		Middlewares: h.middleware,
	}
}
