package records

import (
	"context"
	"time"
)

// Record строка таблицы: колонка -> значение, включая id
type Record map[string]any

// Operation вид изменения в событии
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ChangeEvent уведомление об изменении записи для подписчиков (дашборды)
type ChangeEvent struct {
	Table string    `json:"table"`
	Op    Operation `json:"op"`
	ID    int64     `json:"id"`
	At    time.Time `json:"at"`
}

type Repository interface {
	Insert(ctx context.Context, table string, fields map[string]any) (Record, error)
	Update(ctx context.Context, table string, id int64, fields map[string]any) (Record, error)
	Delete(ctx context.Context, table string, id int64) error
	Get(ctx context.Context, table string, id int64) (Record, error)
	Find(ctx context.Context, table string, filter map[string]any) ([]Record, error)
}

// IdempotencyCache хранит соответствие ключа идемпотентности и созданной записи.
// Reserve атомарно занимает свободный ключ; пока запись не создана,
// Lookup возвращает для него id 0.
type IdempotencyCache interface {
	Lookup(ctx context.Context, key string) (int64, bool, error)
	Reserve(ctx context.Context, key string) (bool, error)
	Remember(ctx context.Context, key string, id int64) error
	Release(ctx context.Context, key string) error
}

type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

type Servicer interface {
	Create(ctx context.Context, table string, fields map[string]any, idempotencyKey string) (Record, error)
	Update(ctx context.Context, table, id string, fields map[string]any) (Record, error)
	Delete(ctx context.Context, table, id string) error
	Query(ctx context.Context, table string, filter map[string]any) ([]Record, error)
}
