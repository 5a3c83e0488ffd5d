package repositories

import (
	"regexp"
	"strconv"
	"strings"
)

// Dialect selects the placeholder style of the connected driver. Queries are
// written with '?' and rebound for Postgres.
type Dialect int

const (
	QuestionDialect Dialect = iota
	DollarDialect
)

func DialectFor(driver string) Dialect {
	switch driver {
	case "pgx", "postgres":
		return DollarDialect
	default:
		return QuestionDialect
	}
}

func (d Dialect) Rebind(query string) string {
	if d != DollarDialect || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func validIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func likePattern(q string) string {
	r := strings.NewReplacer(`%`, "", `_`, "")
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(q))) + "%"
}

// dateOnly trims driver date values ("2026-01-02T00:00:00Z") to YYYY-MM-DD.
func dateOnly(v string) string {
	if len(v) >= 10 {
		return v[:10]
	}
	return v
}
