package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"hostdesk/internal/domain/records"
)

// RecordRepository - records.Repository над таблицами из records.Schema.
// Имена таблиц и колонок проверяются сервисом и дополнительно экранируются.
type RecordRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewRecordRepository(pool *pgxpool.Pool, log *slog.Logger) *RecordRepository {
	return &RecordRepository{
		pool: pool,
		log:  log.With("component", "record_repository"),
	}
}

func (r *RecordRepository) Insert(ctx context.Context, table string, fields map[string]any) (records.Record, error) {
	cols := sortedKeys(fields)
	names := make([]string, len(cols))
	params := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = ident(c)
		params[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[c]
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING *`,
		ident(table), strings.Join(names, ", "), strings.Join(params, ", "))

	rec, err := r.one(ctx, table, query, args...)
	if err != nil {
		r.log.Error("failed to insert record", "table", table, "error", err)
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

func (r *RecordRepository) Update(ctx context.Context, table string, id int64, fields map[string]any) (records.Record, error) {
	cols := sortedKeys(fields)
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", ident(c), i+1))
		args = append(args, fields[c])
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING *`,
		ident(table), strings.Join(sets, ", "), len(args))

	rec, err := r.one(ctx, table, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, records.ErrNotFound
		}
		r.log.Error("failed to update record", "table", table, "id", id, "error", err)
		return nil, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

func (r *RecordRepository) Delete(ctx context.Context, table string, id int64) error {
	result, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, ident(table)), id)
	if err != nil {
		r.log.Error("failed to delete record", "table", table, "id", id, "error", err)
		return fmt.Errorf("delete record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return records.ErrNotFound
	}
	return nil
}

func (r *RecordRepository) Get(ctx context.Context, table string, id int64) (records.Record, error) {
	rec, err := r.one(ctx, table, fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, ident(table)), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, records.ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func (r *RecordRepository) Find(ctx context.Context, table string, filter map[string]any) ([]records.Record, error) {
	where, args := buildWhere(filter)
	query := fmt.Sprintf(`SELECT * FROM %s%s ORDER BY id`, ident(table), where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to query records", "table", table, "error", err)
		return nil, fmt.Errorf("query records: %w", err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}

	out := make([]records.Record, len(maps))
	for i, m := range maps {
		out[i] = toRecord(table, m)
	}
	return out, nil
}

func (r *RecordRepository) one(ctx context.Context, table, query string, args ...any) (records.Record, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	return toRecord(table, m), nil
}

// buildWhere строит условие равенства по всем полям фильтра; nil означает IS NULL
func buildWhere(filter map[string]any) (string, []any) {
	if len(filter) == 0 {
		return "", nil
	}

	cols := sortedKeys(filter)
	conds := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		v := filter[c]
		if v == nil {
			conds = append(conds, ident(c)+" IS NULL")
			continue
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", ident(c), len(args)))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// toRecord приводит DATE-колонки к виду YYYY-MM-DD, в котором их присылает клиент
func toRecord(table string, m map[string]any) records.Record {
	t, _ := records.Lookup(table)
	for k, v := range m {
		ts, ok := v.(time.Time)
		if !ok {
			continue
		}
		if col, ok := t.Columns[k]; ok && col.Type == records.Date {
			m[k] = ts.Format(time.DateOnly)
		}
	}
	return records.Record(m)
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
