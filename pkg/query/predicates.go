// Package query is a minimal, immutable predicate builder. Filters and query
// tags compose a Query; ToSQL renders it for a dialect and Select runs it.
// It is not an ORM: it only covers what field filters need.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

// Operator represents a comparison operator.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpIn
	OpLike // backslash escapes % and _
	OpIsNull
	OpIsNotNull
	OpBetween
)

// String returns the SQL spelling of the operator.
func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	case OpIn:
		return "IN"
	case OpLike:
		return "LIKE"
	case OpIsNull:
		return "IS NULL"
	case OpIsNotNull:
		return "IS NOT NULL"
	case OpBetween:
		return "BETWEEN"
	default:
		return "UNKNOWN"
	}
}

// ParseOperator reads the SQL spelling of an operator, case-insensitively.
// "==" and "<>" are accepted as aliases.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToUpper(strings.Join(strings.Fields(s), " ")) {
	case "=", "==":
		return OpEqual, nil
	case "!=", "<>":
		return OpNotEqual, nil
	case ">":
		return OpGreaterThan, nil
	case ">=":
		return OpGreaterThanOrEqual, nil
	case "<":
		return OpLessThan, nil
	case "<=":
		return OpLessThanOrEqual, nil
	case "IN":
		return OpIn, nil
	case "LIKE":
		return OpLike, nil
	case "IS NULL":
		return OpIsNull, nil
	case "IS NOT NULL":
		return OpIsNotNull, nil
	case "BETWEEN":
		return OpBetween, nil
	default:
		return 0, fmt.Errorf("query: unknown operator %q", s)
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Predicate is a Condition or a Group.
type Predicate interface {
	toSQL(b *builder) (string, error)
}

// Condition compares one column.
type Condition struct {
	Column   string
	Operator Operator
	Value    any
}

// Group combines predicates with AND, or with OR when Or is set.
type Group struct {
	Or    bool
	Items []Predicate
}

// And groups predicates with AND.
func And(items ...Predicate) Group {
	return Group{Items: append([]Predicate(nil), items...)}
}

// Or groups predicates with OR.
func Or(items ...Predicate) Group {
	return Group{Or: true, Items: append([]Predicate(nil), items...)}
}

func Eq(column string, value any) Condition    { return Condition{column, OpEqual, value} }
func NotEq(column string, value any) Condition { return Condition{column, OpNotEqual, value} }
func Gt(column string, value any) Condition    { return Condition{column, OpGreaterThan, value} }
func Gte(column string, value any) Condition   { return Condition{column, OpGreaterThanOrEqual, value} }
func Lt(column string, value any) Condition    { return Condition{column, OpLessThan, value} }
func Lte(column string, value any) Condition   { return Condition{column, OpLessThanOrEqual, value} }
func Like(column string, value any) Condition  { return Condition{column, OpLike, value} }
func IsNull(column string) Condition           { return Condition{Column: column, Operator: OpIsNull} }
func NotNull(column string) Condition          { return Condition{Column: column, Operator: OpIsNotNull} }

// In matches any of values. An empty list matches nothing.
func In(column string, values ...any) Condition {
	return Condition{column, OpIn, append([]any(nil), values...)}
}

// Between matches the inclusive range [from, to].
func Between(column string, from, to any) Condition {
	return Condition{column, OpBetween, [2]any{from, to}}
}

func (c Condition) toSQL(b *builder) (string, error) {
	if !identifierPattern.MatchString(c.Column) {
		return "", fmt.Errorf("query: invalid column %q", c.Column)
	}

	switch c.Operator {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return fmt.Sprintf("%s %s %s", c.Column, c.Operator, b.bind(c.Value)), nil
	case OpLike:
		return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, c.Column, b.bind(c.Value)), nil
	case OpIsNull, OpIsNotNull:
		return fmt.Sprintf("%s %s", c.Column, c.Operator), nil
	case OpIn:
		values, ok := c.Value.([]any)
		if !ok {
			return "", fmt.Errorf("query: IN on %s requires []any", c.Column)
		}
		if len(values) == 0 {
			return "1 = 0", nil
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = b.bind(v)
		}
		return fmt.Sprintf("%s IN (%s)", c.Column, strings.Join(placeholders, ", ")), nil
	case OpBetween:
		bounds, ok := c.Value.([2]any)
		if !ok {
			return "", fmt.Errorf("query: BETWEEN on %s requires two bounds", c.Column)
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", c.Column, b.bind(bounds[0]), b.bind(bounds[1])), nil
	default:
		return "", fmt.Errorf("query: unsupported operator %s", c.Operator)
	}
}

func (g Group) toSQL(b *builder) (string, error) {
	parts := make([]string, 0, len(g.Items))
	for _, item := range g.Items {
		if item == nil {
			continue
		}
		sql, err := item.toSQL(b)
		if err != nil {
			return "", err
		}
		if sql == "" {
			continue
		}
		if nested, ok := item.(Group); ok && len(nested.Items) > 1 {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
	}
	connector := " AND "
	if g.Or {
		connector = " OR "
	}
	return strings.Join(parts, connector), nil
}
