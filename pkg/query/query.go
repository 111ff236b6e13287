package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the placeholder style.
type Dialect int

const (
	// SQLite uses "?" placeholders (also MySQL).
	SQLite Dialect = iota
	// Postgres uses "$1", "$2", ...
	Postgres
)

// ParseDialect maps a config value to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3", "mysql":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return SQLite, fmt.Errorf("query: unknown dialect %q", name)
	}
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Order is an ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Query is an immutable SELECT description. Every method returns a copy;
// the receiver is never modified.
type Query struct {
	table   string
	columns []string
	where   []Predicate
	order   []Order
	limit   int
	offset  int
}

// From starts a query over table. No columns selects "*".
func From(table string, columns ...string) Query {
	return Query{table: table, columns: append([]string(nil), columns...)}
}

// Table returns the table name.
func (q Query) Table() string { return q.table }

// Where adds predicates joined with AND.
func (q Query) Where(predicates ...Predicate) Query {
	out := q.clone()
	for _, p := range predicates {
		if p != nil {
			out.where = append(out.where, p)
		}
	}
	return out
}

// WhereGroup adds a nested group, rendered in parentheses.
func (q Query) WhereGroup(g Group) Query {
	if len(g.Items) == 0 {
		return q
	}
	return q.Where(g)
}

// OrWhere adds a group whose predicates are joined with OR.
func (q Query) OrWhere(predicates ...Predicate) Query {
	return q.WhereGroup(Or(predicates...))
}

func (q Query) WhereNull(column string) Query            { return q.Where(IsNull(column)) }
func (q Query) WhereNotNull(column string) Query         { return q.Where(NotNull(column)) }
func (q Query) WhereNotEqual(column string, v any) Query { return q.Where(NotEq(column, v)) }
func (q Query) WhereEqual(column string, v any) Query    { return q.Where(Eq(column, v)) }

// OrderBy appends a sort term.
func (q Query) OrderBy(column string, desc bool) Query {
	out := q.clone()
	out.order = append(out.order, Order{Column: column, Desc: desc})
	return out
}

// Limit caps the number of rows; 0 removes the cap.
func (q Query) Limit(n int) Query {
	out := q.clone()
	out.limit = n
	return out
}

// Offset skips rows.
func (q Query) Offset(n int) Query {
	out := q.clone()
	out.offset = n
	return out
}

// Predicates returns the top-level predicates.
func (q Query) Predicates() []Predicate {
	return append([]Predicate(nil), q.where...)
}

func (q Query) clone() Query {
	out := q
	out.columns = append([]string(nil), q.columns...)
	out.where = append([]Predicate(nil), q.where...)
	out.order = append([]Order(nil), q.order...)
	return out
}

// WhereSQL renders only the WHERE expression (without the keyword).
func (q Query) WhereSQL(d Dialect) (string, []any, error) {
	b := &builder{dialect: d}
	sql, err := And(q.where...).toSQL(b)
	if err != nil {
		return "", nil, err
	}
	return sql, b.args, nil
}

// ToSQL renders the full SELECT statement.
func (q Query) ToSQL(d Dialect) (string, []any, error) {
	if !identifierPattern.MatchString(q.table) {
		return "", nil, fmt.Errorf("query: invalid table %q", q.table)
	}
	columns := "*"
	if len(q.columns) > 0 {
		for _, c := range q.columns {
			if !identifierPattern.MatchString(c) {
				return "", nil, fmt.Errorf("query: invalid column %q", c)
			}
		}
		columns = strings.Join(q.columns, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + columns + " FROM " + q.table)

	where, args, err := q.WhereSQL(d)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		sb.WriteString(" WHERE " + where)
	}

	if len(q.order) > 0 {
		terms := make([]string, 0, len(q.order))
		for _, o := range q.order {
			if !identifierPattern.MatchString(o.Column) {
				return "", nil, fmt.Errorf("query: invalid order column %q", o.Column)
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			terms = append(terms, o.Column+" "+dir)
		}
		sb.WriteString(" ORDER BY " + strings.Join(terms, ", "))
	}
	if q.limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(q.limit))
	}
	if q.offset > 0 {
		sb.WriteString(" OFFSET " + strconv.Itoa(q.offset))
	}
	return sb.String(), args, nil
}

type builder struct {
	dialect Dialect
	args    []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	if b.dialect == Postgres {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}
