// Package remote описывает контракт удалённого хранилища, против которого
// применяются локальные мутации.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	TableBookings   = "bookings"
	TablePayments   = "payments"
	TableProperties = "properties"

	// FieldID - идентификатор строки, назначаемый удалённым хранилищем.
	FieldID = "id"
)

// Fields набор значений полей для записи
type Fields map[string]any

// Filter условие выборки: равенство по каждому полю
type Filter map[string]any

// Record запись, возвращённая удалённым хранилищем
type Record map[string]any

// Store - удалённое хранилище записей.
// Ошибки оборачиваются в *TransportError или *RejectionError.
type Store interface {
	Create(ctx context.Context, table string, fields Fields) (Record, error)
	Update(ctx context.Context, table, id string, fields Fields) (Record, error)
	Delete(ctx context.Context, table, id string) error
	Query(ctx context.Context, table string, filter Filter) ([]Record, error)
}

// ID возвращает идентификатор строки в строковом виде
func (r Record) ID() string {
	return r.String(FieldID)
}

// String возвращает значение поля как строку
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Float возвращает числовое значение поля; отсутствующее поле даёт 0.
func (r Record) Float(key string) (float64, error) {
	switch v := r[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		if v == "" {
			return 0, nil
		}
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("field %q: unsupported numeric type %T", key, v)
	}
}
