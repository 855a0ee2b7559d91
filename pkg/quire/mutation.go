package quire

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingFilter is reported by an update without any Eq condition.
	ErrMissingFilter = errors.New("update requires at least one Eq filter")
	// ErrFilterCollision is reported when an update sets a filter column to
	// a different value than the one it filters on.
	ErrFilterCollision = errors.New("update value collides with filter")
)

// Insert creates one row.
func (q *Query[T]) Insert(row any) *Insert[T] {
	return &Insert[T]{db: q.db, table: q.table, row: row}
}

// InsertMany creates every row in rows, which must encode as a JSON list
// of objects.
func (q *Query[T]) InsertMany(rows any) *InsertMany[T] {
	return &InsertMany[T]{db: q.db, table: q.table, rows: rows}
}

// Update patches rows selected by subsequent Eq calls.
func (q *Query[T]) Update(values any) *Update[T] {
	return &Update[T]{db: q.db, table: q.table, values: values}
}

// Insert is a pending single-row create.
type Insert[T any] struct {
	db    *DB
	table string
	row   any
}

// Select performs the write and returns the row as echoed by the backend.
func (i *Insert[T]) Select(ctx context.Context) Result[*T] {
	return i.run(ctx)
}

// Execute is Select under the Awaitable name.
func (i *Insert[T]) Execute(ctx context.Context) Result[*T] {
	return i.run(ctx)
}

// Start performs the write in the background.
func (i *Insert[T]) Start(ctx context.Context) *Future[Result[*T]] {
	return start(ctx, i.run)
}

func (i *Insert[T]) run(ctx context.Context) Result[*T] {
	row, err := toRow(i.row)
	if err != nil {
		return failf[*T]("failed to insert into %s: %w", i.table, err)
	}

	rows, err := writeRows(ctx, i.db, ActionCreate, i.table, row)
	if err != nil {
		return failf[*T]("failed to insert into %s: %w", i.table, err)
	}
	return first[T](rows)
}

// InsertMany is a pending multi-row create.
type InsertMany[T any] struct {
	db    *DB
	table string
	rows  any
}

// Select performs the write and returns the rows as echoed by the backend.
func (i *InsertMany[T]) Select(ctx context.Context) Result[[]T] {
	return i.run(ctx)
}

// Execute is Select under the Awaitable name.
func (i *InsertMany[T]) Execute(ctx context.Context) Result[[]T] {
	return i.run(ctx)
}

// Start performs the write in the background.
func (i *InsertMany[T]) Start(ctx context.Context) *Future[Result[[]T]] {
	return start(ctx, i.run)
}

func (i *InsertMany[T]) run(ctx context.Context) Result[[]T] {
	payload, err := toRows(i.rows)
	if err != nil {
		return failf[[]T]("failed to insert into %s: %w", i.table, err)
	}

	rows, err := writeRows(ctx, i.db, ActionCreate, i.table, payload)
	if err != nil {
		return failf[[]T]("failed to insert into %s: %w", i.table, err)
	}
	return all[T](rows)
}

// Update is a pending patch of every row matching its filters.
type Update[T any] struct {
	db      *DB
	table   string
	values  any
	filters []Filter
}

// Eq adds an equality filter selecting the rows to patch.
func (u *Update[T]) Eq(column string, value any) *Update[T] {
	u.filters = append(u.filters, Filter{Column: column, Value: value})
	return u
}

// Select performs the write and returns the rows as echoed by the backend.
func (u *Update[T]) Select(ctx context.Context) Result[[]T] {
	return u.run(ctx)
}

// Execute is Select under the Awaitable name.
func (u *Update[T]) Execute(ctx context.Context) Result[[]T] {
	return u.run(ctx)
}

// Start performs the write in the background.
func (u *Update[T]) Start(ctx context.Context) *Future[Result[[]T]] {
	return start(ctx, u.run)
}

func (u *Update[T]) run(ctx context.Context) Result[[]T] {
	values, merged, err := u.payload()
	if err != nil {
		return failf[[]T]("failed to update %s: %w", u.table, err)
	}

	body, err := u.db.update(ctx, u.table, u.filters, values, merged)
	if err != nil {
		return failf[[]T]("failed to update %s: %w", u.table, err)
	}
	rows, err := parseRows(body)
	if err != nil {
		return failf[[]T]("failed to update %s: %w", u.table, err)
	}
	return all[T](rows)
}

// payload returns the new values and the single flat object the wire
// protocol expects, with the filter criteria merged into the values.
func (u *Update[T]) payload() (Row, Row, error) {
	if len(u.filters) == 0 {
		return nil, nil, ErrMissingFilter
	}

	values, err := toRow(u.values)
	if err != nil {
		return nil, nil, err
	}

	merged := make(Row, len(values)+len(u.filters))
	for k, v := range values {
		merged[k] = v
	}
	for _, f := range u.filters {
		if v, ok := merged[f.Column]; ok && !valuesEqual(v, f.Value) {
			return nil, nil, fmt.Errorf("%w: column %q filtered on %v but set to %v",
				ErrFilterCollision, f.Column, f.Value, v)
		}
		merged[f.Column] = f.Value
	}
	return values, merged, nil
}

func writeRows(ctx context.Context, db *DB, action Action, table string, payload any) ([]Row, error) {
	body, err := db.write(ctx, action, table, payload)
	if err != nil {
		return nil, err
	}
	return parseRows(body)
}

func first[T any](rows []Row) Result[*T] {
	if len(rows) == 0 {
		return ok[*T](nil)
	}
	out, err := decodeRows[T](rows[:1])
	if err != nil {
		return fail[*T](err)
	}
	return ok(&out[0])
}

func all[T any](rows []Row) Result[[]T] {
	out, err := decodeRows[T](rows)
	if err != nil {
		return fail[[]T](err)
	}
	return ok(out)
}
