// Package querybuilder renders the handful of postgres statements the
// repositories issue. Placeholders are numbered $1..$n in the order values
// are bound.
package querybuilder

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type binder struct {
	values []any
}

func (b *binder) bind(value any) string {
	b.values = append(b.values, value)
	return "$" + strconv.Itoa(len(b.values))
}

// expand replaces each ? in expr with the next bound arg.
func (b *binder) expand(expr string, args []any) string {
	if len(args) == 0 {
		return expr
	}
	var out strings.Builder
	for _, r := range expr {
		if r == '?' && len(args) > 0 {
			out.WriteString(b.bind(args[0]))
			args = args[1:]
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// Condition renders one WHERE term, binding any values it needs.
type Condition func(b *binder) string

func Eq(column string, value any) Condition {
	return func(b *binder) string { return column + " = " + b.bind(value) }
}

// Gt is a strict greater-than, used for keyset pagination cursors.
func Gt(column string, value any) Condition {
	return func(b *binder) string { return column + " > " + b.bind(value) }
}

func IsNull(column string) Condition {
	return func(*binder) string { return column + " IS NULL" }
}

// Expr is a raw term with ? placeholders.
func Expr(expr string, args ...any) Condition {
	return func(b *binder) string { return b.expand(expr, args) }
}

func writeWhere(buf *strings.Builder, b *binder, conditions []Condition) {
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
	return &SelectBuilder{columns: columns}
}

func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.table = table
	return s
}

func (s *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	s.where = append(s.where, conditions...)
	return s
}

func (s *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	s.orderBy = append(s.orderBy, terms...)
	return s
}

// Limit of zero or less means no limit.
func (s *SelectBuilder) Limit(limit int) *SelectBuilder {
	s.limit = limit
	return s
}

func (s *SelectBuilder) ToSQL() (string, []any, error) {
	if len(s.columns) == 0 || strings.TrimSpace(s.table) == "" {
		return "", nil, errors.New("select needs columns and a table")
	}

	var (
		buf strings.Builder
		b   binder
	)
	fmt.Fprintf(&buf, "SELECT %s FROM %s", strings.Join(s.columns, ", "), s.table)
	writeWhere(&buf, &b, s.where)
	if len(s.orderBy) > 0 {
		buf.WriteString(" ORDER BY " + strings.Join(s.orderBy, ", "))
	}
	if s.limit > 0 {
		buf.WriteString(" LIMIT " + strconv.Itoa(s.limit))
	}
	return buf.String(), b.values, nil
}

type assignment struct {
	column string
	value  any
	expr   string
	raw    bool
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, value: value})
	return u
}

// SetExpr assigns a raw SQL expression such as NOW().
func (u *UpdateBuilder) SetExpr(column, expr string) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, expr: expr, raw: true})
	return u
}

func (u *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	u.where = append(u.where, conditions...)
	return u
}

func (u *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(u.table) == "" || len(u.sets) == 0 {
		return "", nil, errors.New("update needs a table and at least one assignment")
	}

	var (
		buf strings.Builder
		b   binder
	)
	buf.WriteString("UPDATE " + u.table + " SET ")
	for i, set := range u.sets {
		if i > 0 {
			buf.WriteString(", ")
		}
		value := set.expr
		if !set.raw {
			value = b.bind(set.value)
		}
		buf.WriteString(set.column + " = " + value)
	}
	writeWhere(&buf, &b, u.where)
	return buf.String(), b.values, nil
}

// InsertModel inserts the exported fields of model that carry a db tag.
// suffix is appended verbatim, typically an ON CONFLICT clause.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	columns, values, err := dbFields(model)
	if err != nil {
		return "", nil, fmt.Errorf("insert into %s: %w", table, err)
	}

	var b binder
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = b.bind(v)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		query += " " + suffix
	}
	return query, b.values, nil
}

func dbFields(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, errors.New("model is nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct, got %s", v.Kind())
	}

	var (
		columns []string
		values  []any
	)
	for _, field := range reflect.VisibleFields(v.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name = strings.TrimSpace(name); name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
		values = append(values, v.FieldByIndex(field.Index).Interface())
	}
	if len(columns) == 0 {
		return nil, nil, errors.New("model has no db columns")
	}
	return columns, values, nil
}
