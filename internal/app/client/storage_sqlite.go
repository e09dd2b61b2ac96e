package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"hostdesk/internal/domain/mutation"
)

// ErrNotQueued - элемент с таким local_id отсутствует в очереди
var ErrNotQueued = errors.New("mutation is not queued")

// StorageError ошибка локального хранилища очереди
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("queue storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

var queueTables = map[mutation.Kind]string{
	mutation.KindReservationUpsert: "pending_reservations",
	mutation.KindPaymentCreate:     "pending_payments",
	mutation.KindFieldEdit:         "pending_edits",
}

// SQLiteQueue - durable очередь мутаций: по таблице на каждый вид.
// Каждая операция фиксируется на диске до возврата.
type SQLiteQueue struct {
	db            *sql.DB
	maxRejections int
	now           func() time.Time

	// последняя выданная метка времени; метки строго возрастают
	mu   sync.Mutex
	last int64
}

type QueueOption func(*SQLiteQueue)

// WithMaxRejections включает перевод элемента в failed после n отказов.
// 0 - повторять бесконечно.
func WithMaxRejections(n int) QueueOption {
	return func(q *SQLiteQueue) {
		q.maxRejections = n
	}
}

func withClock(now func() time.Time) QueueOption {
	return func(q *SQLiteQueue) {
		q.now = now
	}
}

func NewSQLiteQueue(path string, opts ...QueueOption) (*SQLiteQueue, error) {
	dsn := path + "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	// один писатель: SQLite сериализует запись
	db.SetMaxOpenConns(1)

	q := &SQLiteQueue{db: db, now: time.Now}
	for _, opt := range opts {
		opt(q)
	}

	if err := q.initTables(); err != nil {
		db.Close()
		return nil, &StorageError{Op: "init", Err: err}
	}

	return q, nil
}

func (q *SQLiteQueue) initTables() error {
	for _, table := range queueTables {
		_, err := q.db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				local_id TEXT PRIMARY KEY,
				payload BLOB NOT NULL,
				enqueued_at INTEGER NOT NULL,
				sync_status TEXT NOT NULL DEFAULT 'pending',
				attempts INTEGER NOT NULL DEFAULT 0,
				rejections INTEGER NOT NULL DEFAULT 0,
				last_error TEXT NOT NULL DEFAULT ''
			);

			CREATE INDEX IF NOT EXISTS idx_%[1]s_status ON %[1]s(sync_status, enqueued_at);
		`, table))
		if err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}
	}
	return nil
}

func tableOf(kind mutation.Kind) (string, error) {
	table, ok := queueTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", mutation.ErrUnknownKind, kind)
	}
	return table, nil
}

func (q *SQLiteQueue) stamp() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()

	ts := q.now().UTC().UnixNano()
	if ts <= q.last {
		ts = q.last + 1
	}
	q.last = ts
	return time.Unix(0, ts).UTC()
}

// Append сохраняет мутацию со статусом pending и новым local_id
func (q *SQLiteQueue) Append(ctx context.Context, kind mutation.Kind, payload mutation.Payload) (*mutation.QueuedMutation, error) {
	return q.AppendWithID(ctx, uuid.NewString(), kind, payload)
}

// AppendWithID сохраняет мутацию под заранее выданным local_id. Нужен,
// когда мутация уже уходила на сервер с этим id как ключом идемпотентности.
func (q *SQLiteQueue) AppendWithID(ctx context.Context, localID string, kind mutation.Kind, payload mutation.Payload) (*mutation.QueuedMutation, error) {
	if localID == "" {
		return nil, fmt.Errorf("%w: empty local id", mutation.ErrInvalidPayload)
	}
	table, err := tableOf(kind)
	if err != nil {
		return nil, err
	}
	if payload == nil || payload.Kind() != kind {
		return nil, fmt.Errorf("%w: %s", mutation.ErrKindMismatch, kind)
	}

	data, err := mutation.Encode(payload)
	if err != nil {
		return nil, err
	}

	m := &mutation.QueuedMutation{
		LocalID:    localID,
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: q.stamp(),
		SyncStatus: mutation.StatusPending,
	}

	_, err = q.db.ExecContext(ctx,
		`INSERT INTO `+table+` (local_id, payload, enqueued_at, sync_status) VALUES (?, ?, ?, ?)`,
		m.LocalID, data, m.EnqueuedAt.UnixNano(), string(m.SyncStatus))
	if err != nil {
		return nil, &StorageError{Op: "append " + kind.String(), Err: err}
	}

	return m, nil
}

// ListPending возвращает снимок ожидающих мутаций вида kind в порядке постановки
func (q *SQLiteQueue) ListPending(ctx context.Context, kind mutation.Kind) ([]mutation.QueuedMutation, error) {
	table, err := tableOf(kind)
	if err != nil {
		return nil, err
	}
	return q.list(ctx, kind, table, mutation.StatusPending)
}

// ListFailed возвращает элементы всех видов, исключённые из синхронизации
func (q *SQLiteQueue) ListFailed(ctx context.Context) ([]mutation.QueuedMutation, error) {
	var out []mutation.QueuedMutation
	for _, kind := range mutation.Kinds() {
		items, err := q.list(ctx, kind, queueTables[kind], mutation.StatusFailed)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (q *SQLiteQueue) list(ctx context.Context, kind mutation.Kind, table string, status mutation.SyncStatus) ([]mutation.QueuedMutation, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT local_id, payload, enqueued_at, sync_status, attempts, last_error
		FROM `+table+`
		WHERE sync_status = ?
		ORDER BY enqueued_at ASC, rowid ASC
	`, string(status))
	if err != nil {
		return nil, &StorageError{Op: "list " + kind.String(), Err: err}
	}
	defer rows.Close()

	var items []mutation.QueuedMutation
	for rows.Next() {
		var (
			m          mutation.QueuedMutation
			data       []byte
			enqueuedAt int64
			syncStatus string
		)
		if err := rows.Scan(&m.LocalID, &data, &enqueuedAt, &syncStatus, &m.Attempts, &m.LastError); err != nil {
			return nil, &StorageError{Op: "scan " + kind.String(), Err: err}
		}

		m.Payload, err = mutation.Decode(kind, data)
		if err != nil {
			return nil, &StorageError{Op: "decode " + m.LocalID, Err: err}
		}
		m.Kind = kind
		m.EnqueuedAt = time.Unix(0, enqueuedAt).UTC()
		m.SyncStatus = mutation.SyncStatus(syncStatus)

		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list " + kind.String(), Err: err}
	}

	return items, nil
}

// Remove удаляет элемент после успешного применения. Повторный вызов не ошибка.
func (q *SQLiteQueue) Remove(ctx context.Context, kind mutation.Kind, localID string) error {
	table, err := tableOf(kind)
	if err != nil {
		return err
	}

	if _, err := q.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE local_id = ?`, localID); err != nil {
		return &StorageError{Op: "remove " + localID, Err: err}
	}
	return nil
}

// CountPending - число ожидающих элементов во всех очередях
func (q *SQLiteQueue) CountPending(ctx context.Context) (int, error) {
	total := 0
	for _, kind := range mutation.Kinds() {
		var n int
		err := q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+queueTables[kind]+` WHERE sync_status = ?`,
			string(mutation.StatusPending)).Scan(&n)
		if err != nil {
			return 0, &StorageError{Op: "count " + kind.String(), Err: err}
		}
		total += n
	}
	return total, nil
}

// RecordFailure сохраняет диагностику неудачной попытки.
// Возвращает true, если элемент переведён в failed.
func (q *SQLiteQueue) RecordFailure(ctx context.Context, kind mutation.Kind, localID string, cause error, rejected bool) (bool, error) {
	table, err := tableOf(kind)
	if err != nil {
		return false, err
	}

	rejection := 0
	if rejected {
		rejection = 1
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE `+table+`
		SET attempts = attempts + 1,
		    rejections = rejections + ?,
		    last_error = ?
		WHERE local_id = ? AND sync_status = ?
	`, rejection, cause.Error(), localID, string(mutation.StatusPending))
	if err != nil {
		return false, &StorageError{Op: "record failure " + localID, Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, fmt.Errorf("%w: %s", ErrNotQueued, localID)
	}

	if !rejected || q.maxRejections <= 0 {
		return false, nil
	}

	res, err = q.db.ExecContext(ctx, `
		UPDATE `+table+` SET sync_status = ?
		WHERE local_id = ? AND rejections >= ?
	`, string(mutation.StatusFailed), localID, q.maxRejections)
	if err != nil {
		return false, &StorageError{Op: "dead-letter " + localID, Err: err}
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Requeue возвращает элемент из failed в pending со сброшенным счётчиком отказов
func (q *SQLiteQueue) Requeue(ctx context.Context, localID string) (mutation.Kind, error) {
	for _, kind := range mutation.Kinds() {
		res, err := q.db.ExecContext(ctx, `
			UPDATE `+queueTables[kind]+`
			SET sync_status = ?, rejections = 0
			WHERE local_id = ? AND sync_status = ?
		`, string(mutation.StatusPending), localID, string(mutation.StatusFailed))
		if err != nil {
			return "", &StorageError{Op: "requeue " + localID, Err: err}
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotQueued, localID)
}

func (q *SQLiteQueue) Close() error {
	return q.db.Close()
}
