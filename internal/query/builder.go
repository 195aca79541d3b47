package query

import (
	"fmt"
	"strings"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Statement is a rendered query with positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

type orderTerm struct {
	column    string
	direction Direction
}

// Builder constructs Postgres SELECT queries. Every method returns a copy, so a
// base builder carrying the filters can produce both the page query and the
// count query without the two drifting apart.
type Builder struct {
	table      string
	joins      []string
	selectCols []string
	where      []Condition
	groupBy    []string
	orderBy    []orderTerm
	limit      int
	offset     int
}

// From creates a new Builder for the specified table expression.
func From(table string) *Builder {
	return &Builder{table: table}
}

func (b *Builder) Join(clause string) *Builder {
	nb := b.clone()
	nb.joins = append(nb.joins, clause)
	return nb
}

func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.selectCols = append(nb.selectCols, columns...)
	return nb
}

// Where adds a condition; multiple calls are combined with AND.
// A nil condition is ignored.
func (b *Builder) Where(c Condition) *Builder {
	if c == nil {
		return b
	}
	nb := b.clone()
	nb.where = append(nb.where, c)
	return nb
}

func (b *Builder) GroupBy(columns ...string) *Builder {
	nb := b.clone()
	nb.groupBy = append(nb.groupBy, columns...)
	return nb
}

// OrderBy appends a sort term; earlier terms take precedence.
func (b *Builder) OrderBy(column string, direction Direction) *Builder {
	nb := b.clone()
	nb.orderBy = append(nb.orderBy, orderTerm{column: column, direction: direction})
	return nb
}

func (b *Builder) Limit(limit int) *Builder {
	nb := b.clone()
	nb.limit = limit
	return nb
}

func (b *Builder) Offset(offset int) *Builder {
	nb := b.clone()
	nb.offset = offset
	return nb
}

// Count returns a builder for COUNT(*) over the same FROM, JOIN and WHERE
// clauses, with ordering and pagination removed.
func (b *Builder) Count() *Builder {
	nb := b.clone()
	nb.selectCols = []string{"COUNT(*)"}
	nb.groupBy = nil
	nb.orderBy = nil
	nb.limit = 0
	nb.offset = 0
	return nb
}

// Predicate renders only the WHERE fragment and its arguments.
func (b *Builder) Predicate() (string, []any) {
	fragment, args, _ := whereSQL(b.where, 1)
	return fragment, args
}

func (b *Builder) Build() Statement {
	var sql strings.Builder

	sql.WriteString("SELECT ")
	if len(b.selectCols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.selectCols, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	for _, j := range b.joins {
		sql.WriteString(" ")
		sql.WriteString(j)
	}

	fragment, args, next := whereSQL(b.where, 1)
	if fragment != "" {
		sql.WriteString(" WHERE ")
		sql.WriteString(fragment)
	}

	if len(b.groupBy) > 0 {
		sql.WriteString(" GROUP BY ")
		sql.WriteString(strings.Join(b.groupBy, ", "))
	}

	if len(b.orderBy) > 0 {
		terms := make([]string, len(b.orderBy))
		for i, t := range b.orderBy {
			dir := "ASC"
			if t.direction == Desc {
				dir = "DESC"
			}
			terms[i] = t.column + " " + dir
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(terms, ", "))
	}

	if b.limit > 0 {
		sql.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", next, next+1))
		args = append(args, b.limit, b.offset)
	}

	return Statement{SQL: sql.String(), Args: args}
}

func (b *Builder) clone() *Builder {
	nb := *b
	nb.joins = append([]string(nil), b.joins...)
	nb.selectCols = append([]string(nil), b.selectCols...)
	nb.where = append([]Condition(nil), b.where...)
	nb.groupBy = append([]string(nil), b.groupBy...)
	nb.orderBy = append([]orderTerm(nil), b.orderBy...)
	return &nb
}

// String returns a human-readable representation for debugging.
func (b *Builder) String() string {
	stmt := b.Build()
	return fmt.Sprintf("SQL: %s\nArgs: %v", stmt.SQL, stmt.Args)
}
