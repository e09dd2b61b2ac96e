// Package testutil содержит вспомогательные реализации для тестов.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"hostdesk/internal/domain/remote"
)

// Call - вызов удалённого хранилища, зафиксированный фейком
type Call struct {
	Op     string
	Table  string
	ID     string
	Fields remote.Fields
	Key    string
}

// FailFunc решает, завершить ли вызов ошибкой. Вызывается до применения операции.
type FailFunc func(call Call) error

// RemoteStore - потокобезопасное in-memory хранилище, реализующее remote.Store.
type RemoteStore struct {
	mu     sync.Mutex
	tables map[string]map[string]remote.Record
	nextID int
	calls  []Call

	// FailBefore вызывается перед операцией, FailAfter - после её применения
	// (запись уже выполнена, но подтверждение "потеряно").
	FailBefore FailFunc
	FailAfter  FailFunc
}

func NewRemoteStore() *RemoteStore {
	return &RemoteStore{
		tables: make(map[string]map[string]remote.Record),
	}
}

// Seed кладёт запись в таблицу и возвращает её идентификатор
func (s *RemoteStore) Seed(table string, fields remote.Fields) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(table, fields).ID()
}

func (s *RemoteStore) insert(table string, fields remote.Fields) remote.Record {
	s.nextID++
	id := strconv.Itoa(s.nextID)

	rec := remote.Record{remote.FieldID: id}
	for k, v := range fields {
		rec[k] = v
	}

	if s.tables[table] == nil {
		s.tables[table] = make(map[string]remote.Record)
	}
	s.tables[table][id] = rec
	return copyRecord(rec)
}

func (s *RemoteStore) record(ctx context.Context, call Call) error {
	if key, ok := remote.IdempotencyKey(ctx); ok {
		call.Key = key
	}
	s.calls = append(s.calls, call)
	if s.FailBefore != nil {
		return s.FailBefore(call)
	}
	return nil
}

func (s *RemoteStore) after(call Call) error {
	if s.FailAfter != nil {
		return s.FailAfter(call)
	}
	return nil
}

func (s *RemoteStore) Create(ctx context.Context, table string, fields remote.Fields) (remote.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := Call{Op: "create", Table: table, Fields: copyFields(fields)}
	if err := s.record(ctx, call); err != nil {
		return nil, err
	}
	rec := s.insert(table, fields)
	if err := s.after(call); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RemoteStore) Update(ctx context.Context, table, id string, fields remote.Fields) (remote.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := Call{Op: "update", Table: table, ID: id, Fields: copyFields(fields)}
	if err := s.record(ctx, call); err != nil {
		return nil, err
	}
	rec, ok := s.tables[table][id]
	if !ok {
		return nil, &remote.RejectionError{Op: "update", Status: 404, Reason: fmt.Sprintf("%s/%s not found", table, id)}
	}
	for k, v := range fields {
		rec[k] = v
	}
	if err := s.after(call); err != nil {
		return nil, err
	}
	return copyRecord(rec), nil
}

func (s *RemoteStore) Delete(ctx context.Context, table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := Call{Op: "delete", Table: table, ID: id}
	if err := s.record(ctx, call); err != nil {
		return err
	}
	delete(s.tables[table], id)
	return s.after(call)
}

func (s *RemoteStore) Query(ctx context.Context, table string, filter remote.Filter) ([]remote.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := Call{Op: "query", Table: table, Fields: remote.Fields(filter)}
	if err := s.record(ctx, call); err != nil {
		return nil, err
	}

	return s.rows(table, filter), nil
}

// Rows возвращает все записи таблицы, удовлетворяющие фильтру
func (s *RemoteStore) Rows(table string, filter remote.Filter) []remote.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows(table, filter)
}

func (s *RemoteStore) rows(table string, filter remote.Filter) []remote.Record {
	var out []remote.Record
	for _, rec := range s.tables[table] {
		if matches(rec, filter) {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].ID())
		b, _ := strconv.Atoi(out[j].ID())
		return a < b
	})
	return out
}

// Calls возвращает копию журнала вызовов
func (s *RemoteStore) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsOf возвращает вызовы указанной операции над таблицей
func (s *RemoteStore) CallsOf(op, table string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Op == op && c.Table == table {
			out = append(out, c)
		}
	}
	return out
}

func matches(rec remote.Record, filter remote.Filter) bool {
	for k, v := range filter {
		if rec.String(k) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func copyRecord(rec remote.Record) remote.Record {
	out := make(remote.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func copyFields(fields remote.Fields) remote.Fields {
	out := make(remote.Fields, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
