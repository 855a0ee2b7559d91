package quire

import (
	"context"
	"fmt"
)

// Query provides a fluent interface for building reads against one sheet.
// Nothing is sent until Execute or Start is called.
type Query[T any] struct {
	db      *DB
	table   string
	filters []Filter
	fields  []string
	limit   int
}

// From starts a query against table whose rows decode into T.
func From[T any](db *DB, table string) *Query[T] {
	return &Query[T]{
		db:    db,
		table: table,
	}
}

// Table returns the sheet name the query targets.
func (q *Query[T]) Table() string {
	return q.table
}

// Select restricts returned rows to the given columns. Arguments may be
// comma-separated lists; "*" or no arguments selects every column.
func (q *Query[T]) Select(fields ...string) *Query[T] {
	q.fields = parseFields(fields)
	return q
}

// Eq adds an equality filter. Filters are combined with AND.
func (q *Query[T]) Eq(column string, value any) *Query[T] {
	q.filters = append(q.filters, Filter{Column: column, Value: value})
	return q
}

// Limit sets the maximum number of results.
func (q *Query[T]) Limit(n int) *Query[T] {
	q.limit = n
	return q
}

// Execute performs the read and returns the matching rows.
func (q *Query[T]) Execute(ctx context.Context) Result[[]T] {
	return q.run(ctx)
}

// Start performs the read in the background.
func (q *Query[T]) Start(ctx context.Context) *Future[Result[[]T]] {
	return start(ctx, q.run)
}

// Single narrows the query to its first matching row.
func (q *Query[T]) Single() *SingleQuery[T] {
	return &SingleQuery[T]{q: q}
}

func (q *Query[T]) run(ctx context.Context) Result[[]T] {
	rows, err := q.fetch(ctx)
	if err != nil {
		return fail[[]T](err)
	}

	out, err := decodeRows[T](rows)
	if err != nil {
		return fail[[]T](err)
	}
	return ok(out)
}

// fetch reads the sheet and reapplies filters, limit and projection. The
// backend may ignore the filter parameters, so they are always enforced
// here.
func (q *Query[T]) fetch(ctx context.Context) ([]Row, error) {
	body, err := q.db.read(ctx, q.table, filterParams(q.filters))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", q.table, err)
	}

	rows, err := parseRows(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", q.table, err)
	}

	rows = applyFilters(rows, q.filters)
	if q.limit > 0 && q.limit < len(rows) {
		rows = rows[:q.limit]
	}
	return project(rows, q.fields), nil
}

// SingleQuery is a Query whose result is one row or nil.
type SingleQuery[T any] struct {
	q *Query[T]
}

// Execute performs the read and returns the first matching row, or nil
// when nothing matches.
func (s *SingleQuery[T]) Execute(ctx context.Context) Result[*T] {
	return s.run(ctx)
}

// Start performs the read in the background.
func (s *SingleQuery[T]) Start(ctx context.Context) *Future[Result[*T]] {
	return start(ctx, s.run)
}

func (s *SingleQuery[T]) run(ctx context.Context) Result[*T] {
	res := s.q.run(ctx)
	if res.Error != nil {
		return Result[*T]{Error: res.Error}
	}
	if len(res.Data) == 0 {
		return ok[*T](nil)
	}
	first := res.Data[0]
	return ok(&first)
}
