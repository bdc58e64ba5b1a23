package repository

import (
	"strconv"
	"strings"
)

// Dialect selects placeholder syntax for the target database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Rebind rewrites '?' placeholders into '$1, $2, ...' for postgres.
// Queries in this package never contain a literal '?'.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
