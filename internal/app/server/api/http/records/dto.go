package records

import "hostdesk/internal/domain/records"

type createInput struct {
	Table          string `path:"table" example:"bookings" doc:"Таблица: bookings, payments, properties"`
	IdempotencyKey string `header:"Idempotency-Key" doc:"Ключ идемпотентности создания"`
	Body           fieldsRequest
}

type updateInput struct {
	Table string `path:"table" example:"bookings" doc:"Таблица: bookings, payments, properties"`
	ID    string `path:"id" example:"1" doc:"ID записи"`
	Body  fieldsRequest
}

type deleteInput struct {
	Table string `path:"table" example:"bookings" doc:"Таблица: bookings, payments, properties"`
	ID    string `path:"id" example:"1" doc:"ID записи"`
}

type queryInput struct {
	Table string `path:"table" example:"bookings" doc:"Таблица: bookings, payments, properties"`
	Body  queryRequest
}

type fieldsRequest struct {
	Fields map[string]any `json:"fields" doc:"Значения колонок"`
}

type queryRequest struct {
	Filter map[string]any `json:"filter,omitempty" doc:"Равенство по колонкам"`
}

type recordOutput struct {
	Body recordResponse
}

type recordResponse struct {
	Record records.Record `json:"record"`
}

type queryOutput struct {
	Body queryResponse
}

type queryResponse struct {
	Records []records.Record `json:"records"`
}
