package query

import (
	"fmt"
	"strings"
)

type assignment struct {
	column string
	value  any
	raw    string
}

// UpdateBuilder constructs "UPDATE ... SET ... WHERE ..." statements from an
// accumulated list of assignments.
type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set assigns a bound value.
func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, value: value})
	return u
}

// SetRaw assigns an SQL expression such as NOW() or NULL.
func (u *UpdateBuilder) SetRaw(column, expr string) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, raw: expr})
	return u
}

func (u *UpdateBuilder) Where(c Condition) *UpdateBuilder {
	if c != nil {
		u.where = append(u.where, c)
	}
	return u
}

// Columns lists the assigned columns in order.
func (u *UpdateBuilder) Columns() []string {
	cols := make([]string, len(u.sets))
	for i, s := range u.sets {
		cols[i] = s.column
	}
	return cols
}

func (u *UpdateBuilder) Build() Statement {
	parts := make([]string, 0, len(u.sets))
	args := make([]any, 0, len(u.sets))
	idx := 1
	for _, s := range u.sets {
		if s.raw != "" {
			parts = append(parts, fmt.Sprintf("%s = %s", s.column, s.raw))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s = $%d", s.column, idx))
		args = append(args, s.value)
		idx++
	}

	var sql strings.Builder
	sql.WriteString("UPDATE ")
	sql.WriteString(u.table)
	sql.WriteString(" SET ")
	sql.WriteString(strings.Join(parts, ", "))

	fragment, whereArgs, _ := whereSQL(u.where, idx)
	if fragment != "" {
		sql.WriteString(" WHERE ")
		sql.WriteString(fragment)
	}

	return Statement{SQL: sql.String(), Args: append(args, whereArgs...)}
}
