// Package expr evaluates show-when rules such as
// `status == "rejected" && views > 100`.
//
// Grammar:
//
//	rule    = or
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" or ")" | ident [ cmp literal ]
//	cmp     = "==" | "!=" | ">" | ">=" | "<" | "<="
//	literal = string | number | true | false | null | ident
//
// A bare identifier tests the truthiness of its value; a bare identifier on
// the right of a comparison is read as a string. Identifiers resolve against
// visibility.Context.Values (dotted paths), then Context.Resolve, and
// `extras.`-prefixed identifiers against Context.Extras.
package expr

import (
	"cmp"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"text/scanner"
	"unicode"

	"github.com/spf13/cast"

	"github.com/goliatone/go-formfields/internal/dotpath"
	"github.com/goliatone/go-formfields/pkg/visibility"
)

// Predicate is a compiled rule.
type Predicate func(ctx visibility.Context) (bool, error)

// Evaluator implements visibility.Evaluator. Compiled rules are kept per rule
// text; results never are.
type Evaluator struct {
	compiled sync.Map
}

var _ visibility.Evaluator = (*Evaluator)(nil)

func New() *Evaluator { return &Evaluator{} }

// Eval compiles rule on first use and evaluates it against ctx.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	if cached, ok := e.compiled.Load(rule); ok {
		return cached.(Predicate)(ctx)
	}
	pred, err := Compile(rule)
	if err != nil {
		return false, err
	}
	e.compiled.Store(rule, pred)
	return pred(ctx)
}

// Compile parses rule. A blank rule always passes.
func Compile(rule string) (Predicate, error) {
	lexemes, err := lex(rule)
	if err != nil {
		return nil, err
	}
	if len(lexemes) == 0 {
		return always, nil
	}
	p := &parser{lexemes: lexemes}
	pred, err := p.or()
	if err != nil {
		return nil, err
	}
	if next, ok := p.peek(); ok {
		return nil, fmt.Errorf("expr: unexpected %q at column %d", next.text, next.col)
	}
	return pred, nil
}

func always(visibility.Context) (bool, error) { return true, nil }

type kind int

const (
	kindIdent kind = iota
	kindString
	kindNumber
	kindBool
	kindNull
	kindOp
)

type lexeme struct {
	kind kind
	text string
	col  int
}

var operators = map[string]bool{
	"==": true, "!=": true, ">=": true, "<=": true, ">": true, "<": true,
	"&&": true, "||": true, "!": true, "(": true, ")": true,
}

func lex(rule string) ([]lexeme, error) {
	var (
		sc      scanner.Scanner
		scanErr error
		out     []lexeme
	)
	sc.Init(strings.NewReader(rule))
	sc.Mode = scanner.ScanIdents | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanRawStrings
	sc.IsIdentRune = isIdentRune
	sc.Error = func(s *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = fmt.Errorf("expr: %s at column %d", msg, s.Pos().Column)
		}
	}

	for tok := sc.Scan(); tok != scanner.EOF; tok = sc.Scan() {
		col := sc.Position.Column
		text := sc.TokenText()

		switch tok {
		case scanner.Ident:
			out = append(out, keyword(text, col))
		case scanner.Int, scanner.Float:
			out = append(out, lexeme{kind: kindNumber, text: text, col: col})
		case scanner.String, scanner.RawString:
			s, err := strconv.Unquote(text)
			if err != nil {
				return nil, fmt.Errorf("expr: invalid string literal at column %d", col)
			}
			out = append(out, lexeme{kind: kindString, text: s, col: col})
		case '-', '+':
			if !unicode.IsDigit(sc.Peek()) {
				return nil, fmt.Errorf("expr: unexpected %q at column %d", text, col)
			}
			sc.Scan()
			out = append(out, lexeme{kind: kindNumber, text: text + sc.TokenText(), col: col})
		default:
			if pair := text + string(sc.Peek()); operators[pair] {
				sc.Next()
				text = pair
			} else if !operators[text] {
				return nil, fmt.Errorf("expr: unexpected %q at column %d", text, col)
			}
			out = append(out, lexeme{kind: kindOp, text: text, col: col})
		}
		if scanErr != nil {
			return nil, scanErr
		}
	}
	return out, scanErr
}

func isIdentRune(ch rune, i int) bool {
	if ch == '_' || unicode.IsLetter(ch) {
		return true
	}
	return i > 0 && (ch == '.' || unicode.IsDigit(ch))
}

func keyword(text string, col int) lexeme {
	switch lower := strings.ToLower(text); lower {
	case "true", "false":
		return lexeme{kind: kindBool, text: lower, col: col}
	case "null", "nil":
		return lexeme{kind: kindNull, text: "null", col: col}
	}
	return lexeme{kind: kindIdent, text: text, col: col}
}

type parser struct {
	lexemes []lexeme
	pos     int
}

func (p *parser) peek() (lexeme, bool) {
	if p.pos >= len(p.lexemes) {
		return lexeme{}, false
	}
	return p.lexemes[p.pos], true
}

func (p *parser) next() (lexeme, bool) {
	l, ok := p.peek()
	if ok {
		p.pos++
	}
	return l, ok
}

func (p *parser) accept(op string) bool {
	if l, ok := p.peek(); ok && l.kind == kindOp && l.text == op {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (Predicate, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept("||") {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = either(left, right)
	}
	return left, nil
}

func (p *parser) and() (Predicate, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept("&&") {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = both(left, right)
	}
	return left, nil
}

func (p *parser) unary() (Predicate, error) {
	if !p.accept("!") {
		return p.primary()
	}
	inner, err := p.unary()
	if err != nil {
		return nil, err
	}
	return func(ctx visibility.Context) (bool, error) {
		ok, err := inner(ctx)
		return !ok, err
	}, nil
}

func (p *parser) primary() (Predicate, error) {
	if p.accept("(") {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, fmt.Errorf("expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("expr: unexpected end of rule")
	}
	if ident.kind != kindIdent {
		return nil, fmt.Errorf("expr: expected identifier, got %q at column %d", ident.text, ident.col)
	}

	op, ok := p.peek()
	if !ok || op.kind != kindOp || !isComparison(op.text) {
		return func(ctx visibility.Context) (bool, error) {
			v, _ := lookup(ctx, ident.text)
			return truthy(v), nil
		}, nil
	}
	p.pos++

	lit, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("expr: missing value after %q", op.text)
	}
	return comparison(ident.text, op.text, lit)
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", ">", ">=", "<", "<=":
		return true
	}
	return false
}

func isOrdering(op string) bool {
	return op != "==" && op != "!="
}

func either(left, right Predicate) Predicate {
	return func(ctx visibility.Context) (bool, error) {
		if ok, err := left(ctx); err != nil || ok {
			return ok, err
		}
		return right(ctx)
	}
}

func both(left, right Predicate) Predicate {
	return func(ctx visibility.Context) (bool, error) {
		if ok, err := left(ctx); err != nil || !ok {
			return false, err
		}
		return right(ctx)
	}
}

// comparison builds the predicate for `ident op lit`. A missing or
// non-numeric value is unequal to every number; any missing value fails an
// ordering.
func comparison(ident, op string, lit lexeme) (Predicate, error) {
	switch lit.kind {
	case kindNull:
		if isOrdering(op) {
			return nil, fmt.Errorf("expr: operator %q cannot compare null", op)
		}
		return func(ctx visibility.Context) (bool, error) {
			v, _ := lookup(ctx, ident)
			return (v == nil) == (op == "=="), nil
		}, nil

	case kindBool:
		if isOrdering(op) {
			return nil, fmt.Errorf("expr: operator %q cannot compare booleans", op)
		}
		want := lit.text == "true"
		return func(ctx visibility.Context) (bool, error) {
			v, _ := lookup(ctx, ident)
			return (asBool(v) == want) == (op == "=="), nil
		}, nil

	case kindNumber:
		want, err := strconv.ParseFloat(lit.text, 64)
		if err != nil {
			return nil, fmt.Errorf("expr: invalid number %q", lit.text)
		}
		return func(ctx visibility.Context) (bool, error) {
			v, _ := lookup(ctx, ident)
			got, ok := asNumber(v)
			if !ok {
				return op == "!=", nil
			}
			return holds(op, cmp.Compare(got, want)), nil
		}, nil

	case kindString, kindIdent:
		want := lit.text
		return func(ctx visibility.Context) (bool, error) {
			v, _ := lookup(ctx, ident)
			if v == nil && isOrdering(op) {
				return false, nil
			}
			return holds(op, strings.Compare(asString(v), want)), nil
		}, nil
	}
	return nil, fmt.Errorf("expr: expected value after %q, got %q at column %d", op, lit.text, lit.col)
}

func holds(op string, c int) bool {
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	}
	return false
}

const extrasPrefix = "extras."

func lookup(ctx visibility.Context, ident string) (any, bool) {
	if len(ident) > len(extrasPrefix) && strings.EqualFold(ident[:len(extrasPrefix)], extrasPrefix) {
		return dotpath.Lookup(ctx.Extras, ident[len(extrasPrefix):])
	}
	if v, ok := dotpath.Lookup(ctx.Values, ident); ok {
		return v, true
	}
	if ctx.Resolve != nil {
		return ctx.Resolve(ident)
	}
	return nil, false
}

// truthy treats any non-blank string as set, unlike form switchers where "0"
// is off.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	if n, ok := asNumber(v); ok {
		return n != 0
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func asBool(v any) bool {
	if s, ok := v.(string); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return truthy(v)
}

// asNumber coerces numbers and numeric strings. Booleans and nil are not
// numbers here even though cast maps them to 1 and 0.
func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		if v = strings.TrimSpace(t); v == "" {
			return 0, false
		}
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}

func asString(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
