package records

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// Service - операции удалённого хранилища записей поверх репозитория
type Service struct {
	repo      Repository
	cache     IdempotencyCache
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewService создаёт сервис. cache и publisher могут быть nil.
func NewService(repo Repository, cache IdempotencyCache, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log.With("component", "records_service"),
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, table string, fields map[string]any, idempotencyKey string) (Record, error) {
	t, err := Lookup(table)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrEmptyFields
	}
	values, err := t.Normalize(fields)
	if err != nil {
		return nil, err
	}
	if err := t.CheckRequired(values); err != nil {
		return nil, err
	}

	cacheKey := ""
	if idempotencyKey != "" && s.cache != nil {
		cacheKey = table + ":" + idempotencyKey
		rec, ok, err := s.claim(ctx, table, cacheKey)
		if err != nil {
			return nil, err
		}
		if ok {
			return rec, nil
		}
	}

	rec, err := s.repo.Insert(ctx, table, values)
	if err != nil {
		if cacheKey != "" {
			s.release(ctx, cacheKey)
		}
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	id := recordID(rec)

	if cacheKey != "" {
		if err := s.cache.Remember(ctx, cacheKey, id); err != nil {
			s.log.Warn("failed to remember idempotency key", "key", idempotencyKey, "error", err)
		}
	}

	s.publish(ctx, table, OpCreate, id)
	return rec, nil
}

// claim либо возвращает запись, уже созданную с этим ключом, либо
// резервирует ключ за текущим запросом. Ключ, занятый параллельным
// запросом без готовой записи, даёт ErrCreateInProgress.
func (s *Service) claim(ctx context.Context, table, cacheKey string) (Record, bool, error) {
	if rec, ok := s.replay(ctx, table, cacheKey); ok {
		return rec, true, nil
	}

	won, err := s.cache.Reserve(ctx, cacheKey)
	if err != nil {
		// без кэша запрос обрабатывается как обычный
		s.log.Warn("idempotency reserve failed", "key", cacheKey, "error", err)
		return nil, false, nil
	}
	if won {
		return nil, false, nil
	}

	// ключ заняли между Lookup и Reserve
	if rec, ok := s.replay(ctx, table, cacheKey); ok {
		return rec, true, nil
	}
	return nil, false, fmt.Errorf("%w: %s", ErrCreateInProgress, cacheKey)
}

// replay возвращает запись, уже созданную с этим ключом
func (s *Service) replay(ctx context.Context, table, cacheKey string) (Record, bool) {
	id, ok, err := s.cache.Lookup(ctx, cacheKey)
	if err != nil {
		s.log.Warn("idempotency lookup failed", "key", cacheKey, "error", err)
		return nil, false
	}
	// нулевой id - ключ зарезервирован, запись ещё не создана
	if !ok || id == 0 {
		return nil, false
	}

	rec, err := s.repo.Get(ctx, table, id)
	if err != nil {
		s.log.Warn("idempotent record is gone", "key", cacheKey, "id", id, "error", err)
		s.release(ctx, cacheKey)
		return nil, false
	}

	s.log.Debug("duplicate create suppressed", "key", cacheKey, "id", id)
	return rec, true
}

func (s *Service) release(ctx context.Context, cacheKey string) {
	if err := s.cache.Release(ctx, cacheKey); err != nil {
		s.log.Warn("failed to release idempotency key", "key", cacheKey, "error", err)
	}
}

func (s *Service) Update(ctx context.Context, table, id string, fields map[string]any) (Record, error) {
	t, err := Lookup(table)
	if err != nil {
		return nil, err
	}
	rowID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrEmptyFields
	}
	values, err := t.Normalize(fields)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Update(ctx, table, rowID, values)
	if err != nil {
		return nil, fmt.Errorf("update %s/%d: %w", table, rowID, err)
	}

	s.publish(ctx, table, OpUpdate, rowID)
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, table, id string) error {
	if _, err := Lookup(table); err != nil {
		return err
	}
	rowID, err := ParseID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, table, rowID); err != nil {
		return fmt.Errorf("delete %s/%d: %w", table, rowID, err)
	}

	s.publish(ctx, table, OpDelete, rowID)
	return nil
}

func (s *Service) Query(ctx context.Context, table string, filter map[string]any) ([]Record, error) {
	t, err := Lookup(table)
	if err != nil {
		return nil, err
	}
	values, err := t.NormalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	recs, err := s.repo.Find(ctx, table, values)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

func (s *Service) publish(ctx context.Context, table string, op Operation, id int64) {
	if s.publisher == nil {
		return
	}
	event := ChangeEvent{Table: table, Op: op, ID: id, At: s.now().UTC()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish change event", "table", table, "op", op, "id", id, "error", err)
	}
}

func recordID(rec Record) int64 {
	switch v := rec[ColumnID].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
