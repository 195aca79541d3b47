package query

import (
	"fmt"
	"strings"
)

// Condition represents a WHERE clause condition.
// argIndex is the 1-based position of the first placeholder the condition may use;
// the returned args must match the placeholders in order.
type Condition interface {
	SQL(argIndex int) (string, []any)
}

type compareCondition struct {
	field string
	op    string
	value any
}

func (c *compareCondition) SQL(argIndex int) (string, []any) {
	return fmt.Sprintf("%s %s $%d", c.field, c.op, argIndex), []any{c.value}
}

// Eq generates "field = $n".
func Eq(field string, value any) Condition {
	return &compareCondition{field: field, op: "=", value: value}
}

// NotEq generates "field <> $n".
func NotEq(field string, value any) Condition {
	return &compareCondition{field: field, op: "<>", value: value}
}

// Gte generates "field >= $n".
func Gte(field string, value any) Condition {
	return &compareCondition{field: field, op: ">=", value: value}
}

// Lte generates "field <= $n".
func Lte(field string, value any) Condition {
	return &compareCondition{field: field, op: "<=", value: value}
}

// Contains generates a case-insensitive substring match.
// LIKE wildcards in the value are escaped so they match literally.
func Contains(field string, value string) Condition {
	return &compareCondition{field: field, op: "ILIKE", value: "%" + escapeLike(value) + "%"}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type nullCondition struct {
	field string
	not   bool
}

func (c *nullCondition) SQL(int) (string, []any) {
	if c.not {
		return c.field + " IS NOT NULL", nil
	}
	return c.field + " IS NULL", nil
}

func IsNull(field string) Condition {
	return &nullCondition{field: field}
}

func IsNotNull(field string) Condition {
	return &nullCondition{field: field, not: true}
}

type notInCondition struct {
	field  string
	values []any
}

// NotIn generates "field NOT IN ($n, $n+1, ...)". An empty list matches everything.
func NotIn(field string, values ...any) Condition {
	return &notInCondition{field: field, values: values}
}

func (c *notInCondition) SQL(argIndex int) (string, []any) {
	if len(c.values) == 0 {
		return "TRUE", nil
	}
	placeholders := make([]string, len(c.values))
	for i := range c.values {
		placeholders[i] = fmt.Sprintf("$%d", argIndex+i)
	}
	return fmt.Sprintf("%s NOT IN (%s)", c.field, strings.Join(placeholders, ", ")), c.values
}

// whereSQL renders conditions joined by AND, numbering placeholders from start.
// It returns the fragment (without the WHERE keyword) and the next free index.
func whereSQL(conds []Condition, start int) (string, []any, int) {
	if len(conds) == 0 {
		return "", nil, start
	}
	parts := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	idx := start
	for _, c := range conds {
		fragment, condArgs := c.SQL(idx)
		parts = append(parts, fragment)
		args = append(args, condArgs...)
		idx += len(condArgs)
	}
	return strings.Join(parts, " AND "), args, idx
}
