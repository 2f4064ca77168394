// Package scope narrows reads against tenant- and store-owned tables to the
// caller's own tenant and store.
package scope

import (
	"fmt"
	"reflect"

	sq "github.com/Masterminds/squirrel"
)

// Filterable is a not-yet-executed query that accepts equality predicates.
type Filterable interface {
	Table() string
	WhereEq(column string, value any)
}

type condition struct {
	column string
	value  any
	raw    string
}

func (c condition) sqlizer() sq.Sqlizer {
	if c.raw != "" {
		return sq.Expr(c.raw)
	}
	return sq.Eq{c.column: c.value}
}

// psql renders $n placeholders for pgx.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Query is a SELECT against a single table. It records its predicates so
// scoping stays idempotent and inspectable, and renders through squirrel.
// It never touches the database itself.
type Query struct {
	table      string
	columns    []string
	conditions []condition
	orderBy    []string
	limit      uint64
	offset     uint64
}

// From starts a query against table.
func From(table string) *Query {
	return &Query{table: table}
}

// Table returns the queried table name.
func (q *Query) Table() string {
	return q.table
}

// Select sets the projected columns. Defaults to *.
func (q *Query) Select(columns ...string) *Query {
	q.columns = append(q.columns[:0], columns...)
	return q
}

// Where adds an equality predicate and returns q for chaining.
func (q *Query) Where(column string, value any) *Query {
	q.WhereEq(column, value)
	return q
}

// WhereEq adds column = value. Adding an identical predicate twice has no effect.
func (q *Query) WhereEq(column string, value any) {
	for _, c := range q.conditions {
		if c.raw == "" && c.column == column && sameValue(c.value, value) {
			return
		}
	}
	q.conditions = append(q.conditions, condition{column: column, value: value})
}

// WhereRaw adds a predicate without arguments, e.g. a column-to-column
// comparison. expr must never contain user input.
func (q *Query) WhereRaw(expr string) *Query {
	for _, c := range q.conditions {
		if c.raw == expr {
			return q
		}
	}
	q.conditions = append(q.conditions, condition{raw: expr})
	return q
}

// Filters returns the filtered columns in insertion order.
func (q *Query) Filters() []string {
	out := make([]string, 0, len(q.conditions))
	for _, c := range q.conditions {
		if c.raw == "" {
			out = append(out, c.column)
		}
	}
	return out
}

// HasFilter reports whether an equality predicate on column exists.
func (q *Query) HasFilter(column string) bool {
	for _, c := range q.conditions {
		if c.raw == "" && c.column == column {
			return true
		}
	}
	return false
}

// OrderBy appends ORDER BY terms, e.g. "name ASC".
func (q *Query) OrderBy(terms ...string) *Query {
	q.orderBy = append(q.orderBy, terms...)
	return q
}

// Limit caps the number of returned rows; zero means no limit.
func (q *Query) Limit(n int) *Query {
	q.limit = uint64(max(n, 0))
	return q
}

// Offset skips the first n rows.
func (q *Query) Offset(n int) *Query {
	q.offset = uint64(max(n, 0))
	return q
}

// Clone returns an independent copy of q.
func (q *Query) Clone() *Query {
	c := *q
	c.columns = append([]string(nil), q.columns...)
	c.conditions = append([]condition(nil), q.conditions...)
	c.orderBy = append([]string(nil), q.orderBy...)
	return &c
}

// SQL renders the SELECT statement and its arguments.
func (q *Query) SQL() (string, []any, error) {
	columns := q.columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	b := q.where(psql.Select(columns...).From(q.table))
	if len(q.orderBy) > 0 {
		b = b.OrderBy(q.orderBy...)
	}
	if q.limit > 0 {
		b = b.Limit(q.limit)
	}
	if q.offset > 0 {
		b = b.Offset(q.offset)
	}
	return render(b)
}

// CountSQL renders SELECT COUNT(*) with the same predicates.
func (q *Query) CountSQL() (string, []any, error) {
	return render(q.where(psql.Select("COUNT(*)").From(q.table)))
}

func (q *Query) where(b sq.SelectBuilder) sq.SelectBuilder {
	for _, c := range q.conditions {
		b = b.Where(c.sqlizer())
	}
	return b
}

func render(b sq.SelectBuilder) (string, []any, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("scope: render query: %w", err)
	}
	if args == nil {
		args = []any{}
	}
	return sql, args, nil
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
