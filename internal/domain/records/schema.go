package records

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ColumnType тип значения колонки
type ColumnType int

const (
	Text ColumnType = iota
	Number
	Integer
	Date
)

type Column struct {
	Type ColumnType
	// Enum ограничивает допустимые значения текстовой колонки
	Enum []string
}

type Table struct {
	Name     string
	Columns  map[string]Column
	Required []string
}

const ColumnID = "id"

// Schema - разрешённые таблицы и колонки. Всё остальное отклоняется.
var Schema = map[string]Table{
	"bookings": {
		Name: "bookings",
		Columns: map[string]Column{
			"booking_id":      {Type: Text},
			"property_id":     {Type: Text},
			"guest_name":      {Type: Text},
			"guest_phone":     {Type: Text},
			"check_in":        {Type: Date},
			"check_out":       {Type: Date},
			"total_amount":    {Type: Number},
			"paid_amount":     {Type: Number},
			"payment_status":  {Type: Text, Enum: []string{"pending", "partial", "paid"}},
			"ota_service_fee": {Type: Number},
			"booking_source":  {Type: Text},
			"notes":           {Type: Text},
			"adults":          {Type: Integer},
			"children":        {Type: Integer},
		},
		Required: []string{"booking_id"},
	},
	"payments": {
		Name: "payments",
		Columns: map[string]Column{
			"booking_id":   {Type: Text},
			"amount":       {Type: Number},
			"payment_date": {Type: Date},
			"method":       {Type: Text},
			"recipient":    {Type: Text},
		},
		Required: []string{"booking_id", "amount"},
	},
	"properties": {
		Name: "properties",
		Columns: map[string]Column{
			"name":      {Type: Text},
			"address":   {Type: Text},
			"capacity":  {Type: Integer},
			"base_rate": {Type: Number},
			"notes":     {Type: Text},
		},
		Required: []string{"name"},
	},
}

// Lookup возвращает описание таблицы
func Lookup(name string) (Table, error) {
	t, ok := Schema[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// Normalize проверяет поля записи и приводит значения к типам колонок.
// nil допустим и означает NULL.
func (t Table) Normalize(fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for name, raw := range fields {
		col, ok := t.Columns[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.Name, name)
		}
		v, err := col.normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidValue, t.Name, name, err)
		}
		out[name] = v
	}
	return out, nil
}

// NormalizeFilter то же, что Normalize, но допускает колонку id
func (t Table) NormalizeFilter(filter map[string]any) (map[string]any, error) {
	rest := make(map[string]any, len(filter))
	out := make(map[string]any, len(filter))
	for k, v := range filter {
		if k == ColumnID {
			id, err := ParseID(fmt.Sprint(v))
			if err != nil {
				return nil, err
			}
			out[k] = id
			continue
		}
		rest[k] = v
	}

	norm, err := t.Normalize(rest)
	if err != nil {
		return nil, err
	}
	for k, v := range norm {
		out[k] = v
	}
	return out, nil
}

// CheckRequired проверяет наличие обязательных колонок при создании
func (t Table) CheckRequired(fields map[string]any) error {
	for _, name := range t.Required {
		if v, ok := fields[name]; !ok || v == nil || v == "" {
			return fmt.Errorf("%w: %s.%s is required", ErrInvalidValue, t.Name, name)
		}
	}
	return nil
}

func (c Column) normalize(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch c.Type {
	case Number:
		return toFloat(raw)
	case Integer:
		f, err := toFloat(raw)
		if err != nil {
			return nil, err
		}
		if f != float64(int64(f)) {
			return nil, fmt.Errorf("%v is not an integer", raw)
		}
		return int64(f), nil
	case Date:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("date must be a string, got %T", raw)
		}
		if s == "" {
			return nil, nil
		}
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return nil, fmt.Errorf("date must be YYYY-MM-DD: %q", s)
		}
		return s, nil
	default:
		s, ok := raw.(string)
		if !ok {
			s = fmt.Sprint(raw)
		}
		if len(c.Enum) > 0 && !contains(c.Enum, s) {
			return nil, fmt.Errorf("%q is not one of %v", s, c.Enum)
		}
		return s, nil
	}
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
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
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("%T is not a number", raw)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ParseID разбирает идентификатор строки
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
