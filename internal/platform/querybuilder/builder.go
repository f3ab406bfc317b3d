package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// binder collects positional arguments and hands out $n placeholders.
type binder struct {
	args []any
}

func (b *binder) bind(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

// expand replaces each '?' in expr with the next bound argument.
func (b *binder) expand(expr string, values []any) string {
	if len(values) == 0 {
		return expr
	}
	var out strings.Builder
	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && next < len(values) {
			out.WriteString(b.bind(values[next]))
			next++
			continue
		}
		out.WriteByte(expr[i])
	}
	return out.String()
}

// Condition renders one WHERE predicate.
type Condition func(b *binder) string

func Eq(column string, value any) Condition {
	return func(b *binder) string { return column + " = " + b.bind(value) }
}

func Gte(column string, value any) Condition {
	return func(b *binder) string { return column + " >= " + b.bind(value) }
}

func In(column string, values []any) Condition {
	return func(b *binder) string {
		if len(values) == 0 {
			return "1=0"
		}
		marks := make([]string, 0, len(values))
		for _, v := range values {
			marks = append(marks, b.bind(v))
		}
		return column + " IN (" + strings.Join(marks, ", ") + ")"
	}
}

func IsNull(column string) Condition {
	return func(*binder) string { return column + " IS NULL" }
}

// Expr is a raw predicate using '?' for its arguments.
func Expr(expr string, args ...any) Condition {
	return func(b *binder) string { return b.expand(expr, args) }
}

func renderWhere(buf *strings.Builder, b *binder, conditions []Condition) {
	for i, cond := range conditions {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		buf.WriteString(cond(b))
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.table = table
	return s
}

func (s *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	s.where = append(s.where, conditions...)
	return s
}

// WhereIf appends the condition only when ok is true.
func (s *SelectBuilder) WhereIf(ok bool, condition Condition) *SelectBuilder {
	if ok {
		s.where = append(s.where, condition)
	}
	return s
}

func (s *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	s.orderBy = append(s.orderBy, parts...)
	return s
}

func (s *SelectBuilder) Limit(limit int) *SelectBuilder {
	s.limit = limit
	return s
}

func (s *SelectBuilder) ToSQL() (string, []any, error) {
	if len(s.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(s.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var (
		buf strings.Builder
		b   binder
	)
	buf.WriteString("SELECT " + strings.Join(s.columns, ", ") + " FROM " + s.table)
	renderWhere(&buf, &b, s.where)
	if len(s.orderBy) > 0 {
		buf.WriteString(" ORDER BY " + strings.Join(s.orderBy, ", "))
	}
	if s.limit > 0 {
		buf.WriteString(" LIMIT " + strconv.Itoa(s.limit))
	}
	return buf.String(), b.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append([]string(nil), columns...)
	return i
}

func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.rows = append(i.rows, append([]any(nil), values...))
	return i
}

// Suffix appends raw SQL such as ON CONFLICT or RETURNING clauses.
func (i *InsertBuilder) Suffix(sql string) *InsertBuilder {
	i.suffix = strings.TrimSpace(sql)
	return i
}

func (i *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(i.table) == "":
		return "", nil, fmt.Errorf("insert table is required")
	case len(i.columns) == 0:
		return "", nil, fmt.Errorf("insert columns are required")
	case len(i.rows) == 0:
		return "", nil, fmt.Errorf("insert values are required")
	}

	var (
		buf strings.Builder
		b   binder
	)
	buf.WriteString("INSERT INTO " + i.table + " (" + strings.Join(i.columns, ", ") + ") VALUES ")
	for rowIdx, row := range i.rows {
		if len(row) != len(i.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(i.columns))
		}
		marks := make([]string, 0, len(row))
		for _, v := range row {
			marks = append(marks, b.bind(v))
		}
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(" + strings.Join(marks, ", ") + ")")
	}
	if i.suffix != "" {
		buf.WriteString(" " + i.suffix)
	}
	return buf.String(), b.args, nil
}

type assignment struct {
	column string
	expr   string
	args   []any
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, expr: "?", args: []any{value}})
	return u
}

// SetIf adds the assignment only when ok is true, for partial updates.
func (u *UpdateBuilder) SetIf(ok bool, column string, value func() any) *UpdateBuilder {
	if ok {
		u.Set(column, value())
	}
	return u
}

func (u *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, expr: expr, args: args})
	return u
}

func (u *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	u.where = append(u.where, conditions...)
	return u
}

func (u *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	u.suffix = strings.TrimSpace(sql)
	return u
}

// Empty reports whether no assignment has been added yet.
func (u *UpdateBuilder) Empty() bool {
	return len(u.sets) == 0
}

func (u *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(u.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(u.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var (
		buf strings.Builder
		b   binder
	)
	parts := make([]string, 0, len(u.sets))
	for _, set := range u.sets {
		parts = append(parts, set.column+" = "+b.expand(set.expr, set.args))
	}
	buf.WriteString("UPDATE " + u.table + " SET " + strings.Join(parts, ", "))
	renderWhere(&buf, &b, u.where)
	if u.suffix != "" {
		buf.WriteString(" " + u.suffix)
	}
	return buf.String(), b.args, nil
}
