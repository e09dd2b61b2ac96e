package records

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const basePath = "/api/v1/tables/{table}"

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "records-create",
		Method:        http.MethodPost,
		Path:          basePath + "/records",
		Summary:       "Создать запись",
		Description:   "Повтор с тем же Idempotency-Key возвращает уже созданную запись.",
		Tags:          []string{"records"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-update",
		Method:      http.MethodPatch,
		Path:        basePath + "/records/{id}",
		Summary:     "Изменить поля записи",
		Tags:        []string{"records"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "records-delete",
		Method:        http.MethodDelete,
		Path:          basePath + "/records/{id}",
		Summary:       "Удалить запись",
		Tags:          []string{"records"},
		DefaultStatus: http.StatusNoContent,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) queryOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-query",
		Method:      http.MethodPost,
		Path:        basePath + "/query",
		Summary:     "Выборка записей по равенству полей",
		Tags:        []string{"records"},
		Middlewares: h.middleware,
	}
}
