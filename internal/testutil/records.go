package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hostdesk/internal/domain/records"
)

// RecordRepository - in-memory records.Repository
type RecordRepository struct {
	mu     sync.Mutex
	tables map[string]map[int64]records.Record
	nextID int64
}

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{tables: make(map[string]map[int64]records.Record)}
}

func (r *RecordRepository) Insert(_ context.Context, table string, fields map[string]any) (records.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec := records.Record{records.ColumnID: r.nextID}
	for k, v := range fields {
		rec[k] = v
	}
	if r.tables[table] == nil {
		r.tables[table] = make(map[int64]records.Record)
	}
	r.tables[table][r.nextID] = rec
	return copyRow(rec), nil
}

func (r *RecordRepository) Update(_ context.Context, table string, id int64, fields map[string]any) (records.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tables[table][id]
	if !ok {
		return nil, records.ErrNotFound
	}
	for k, v := range fields {
		rec[k] = v
	}
	return copyRow(rec), nil
}

func (r *RecordRepository) Delete(_ context.Context, table string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tables[table][id]; !ok {
		return records.ErrNotFound
	}
	delete(r.tables[table], id)
	return nil
}

func (r *RecordRepository) Get(_ context.Context, table string, id int64) (records.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tables[table][id]
	if !ok {
		return nil, records.ErrNotFound
	}
	return copyRow(rec), nil
}

func (r *RecordRepository) Find(_ context.Context, table string, filter map[string]any) ([]records.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(table, filter), nil
}

// Rows возвращает все строки таблицы по возрастанию id
func (r *RecordRepository) Rows(table string) []records.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(table, nil)
}

func (r *RecordRepository) find(table string, filter map[string]any) []records.Record {
	var out []records.Record
	for _, rec := range r.tables[table] {
		ok := true
		for k, v := range filter {
			if fmt.Sprint(rec[k]) != fmt.Sprint(v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, copyRow(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i][records.ColumnID].(int64) < out[j][records.ColumnID].(int64)
	})
	return out
}

func copyRow(rec records.Record) records.Record {
	out := make(records.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// IdempotencyCache - in-memory records.IdempotencyCache
type IdempotencyCache struct {
	mu   sync.Mutex
	keys map[string]int64
}

func NewIdempotencyCache() *IdempotencyCache {
	return &IdempotencyCache{keys: make(map[string]int64)}
}

func (c *IdempotencyCache) Lookup(_ context.Context, key string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.keys[key]
	return id, ok, nil
}

func (c *IdempotencyCache) Reserve(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.keys[key]; ok {
		return false, nil
	}
	c.keys[key] = 0
	return true, nil
}

func (c *IdempotencyCache) Remember(_ context.Context, key string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = id
	return nil
}

func (c *IdempotencyCache) Release(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, key)
	return nil
}
