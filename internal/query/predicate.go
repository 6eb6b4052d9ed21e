// Package query builds record-store predicates from list requests and pages through the results.
package query

import (
	"strings"
	"time"
)

// Predicate is a SQL boolean condition with its bind arguments.
// An empty string means the predicate does not restrict anything.
type Predicate interface {
	SQL() (string, []any)
}

// All is the conjunction of its terms. Empty terms are skipped.
type All []Predicate

func (a All) SQL() (string, []any) {
	return join(a, " AND ", false)
}

// Any is the disjunction of its terms, always bracketed so it cannot
// leak out of an enclosing AND.
type Any []Predicate

func (a Any) SQL() (string, []any) {
	return join(a, " OR ", true)
}

func join(terms []Predicate, sep string, bracket bool) (string, []any) {
	var (
		parts []string
		args  []any
	)
	for _, t := range terms {
		if t == nil {
			continue
		}
		sql, a := t.SQL()
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		args = append(args, a...)
	}

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		if bracket {
			return "(" + parts[0] + ")", args
		}
		return parts[0], args
	}

	sql := strings.Join(parts, sep)
	if bracket {
		sql = "(" + sql + ")"
	}
	return sql, args
}

// Equals matches Column = Value.
type Equals struct {
	Column string
	Value  any
}

func (e Equals) SQL() (string, []any) {
	return e.Column + " = ?", []any{e.Value}
}

// IsNull matches rows where Column is NULL.
type IsNull struct {
	Column string
}

func (n IsNull) SQL() (string, []any) {
	return n.Column + " IS NULL", nil
}

// Contains is a case-insensitive substring match. LIKE wildcards in Value match literally.
type Contains struct {
	Column string
	Value  string
}

func (c Contains) SQL() (string, []any) {
	pattern := "%" + escapeLike(strings.ToLower(c.Value)) + "%"
	return "LOWER(" + c.Column + ") LIKE ? ESCAPE '!'", []any{pattern}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Between matches From <= Column <= To.
type Between struct {
	Column string
	From   time.Time
	To     time.Time
}

func (b Between) SQL() (string, []any) {
	return b.Column + " BETWEEN ? AND ?", []any{b.From, b.To}
}

// Where renders p as a WHERE clause, or "" when p is empty.
func Where(p Predicate) (string, []any) {
	if p == nil {
		return "", nil
	}
	sql, args := p.SQL()
	if sql == "" {
		return "", nil
	}
	return " WHERE " + sql, args
}
