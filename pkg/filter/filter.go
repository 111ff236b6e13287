// Package filter turns submitted filter values into query predicates.
//
// Each filter reads its value from the request parameter
// filters[<kind>_<column>] ("filters[is_not_empty_title]") and returns a new
// query. A filter with no submitted value returns the query unchanged.
// Filters hold only schema data and never change after construction.
package filter

import (
	"strings"

	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/model"
	"github.com/goliatone/go-formfields/pkg/query"
)

// Param is the request parameter holding every filter value.
const Param = "filters"

// Kind identifies a filter type; it prefixes the parameter slug.
type Kind string

const (
	KindText       Kind = "text"
	KindSelect     Kind = "select"
	KindSwitch     Kind = "switch"
	KindIsNotEmpty Kind = "is_not_empty"
	KindDate       Kind = "date"
	KindDateRange  Kind = "date_range"
	KindBelongsTo  Kind = "belongs_to"
)

// Filter contributes predicates to an index query.
type Filter interface {
	Kind() Kind
	// Field is the input rendered in the filter form.
	Field() field.Field
	// Column is the filtered column.
	Column() string
	// Slug is "<kind>_<column>".
	Slug() string
	// ParamName is the bracketed input name, "filters[<slug>]".
	ParamName() string
	// Value returns the submitted value, else the declared default.
	Value(req model.Request) (any, bool)
	// Apply returns q extended with the filter's predicates.
	Apply(q query.Query, req model.Request) query.Query
}

type base struct {
	kind  Kind
	input field.Field
}

func (b base) Kind() Kind         { return b.kind }
func (b base) Field() field.Field { return b.input }
func (b base) Column() string     { return b.input.FieldName() }
func (b base) Slug() string       { return string(b.kind) + "_" + b.Column() }
func (b base) ParamName() string  { return Param + "[" + b.Slug() + "]" }

// ParamPath returns the dotted parameter path, "filters.<slug>".
func (b base) ParamPath() string { return Param + "." + b.Slug() }

func (b base) Value(req model.Request) (any, bool) {
	if req != nil {
		if v, ok := req.Input(b.ParamPath()); ok && !blank(v) {
			return v, true
		}
	}
	if def, ok := b.input.Default(); ok && def != "" {
		return def, true
	}
	return nil, false
}

// Apply folds every filter into q in order.
func Apply(q query.Query, req model.Request, filters ...Filter) query.Query {
	for _, f := range filters {
		if f != nil {
			q = f.Apply(q, req)
		}
	}
	return q
}

// Active returns the filters that have a value for req.
func Active(req model.Request, filters ...Filter) []Filter {
	var out []Filter
	for _, f := range filters {
		if f == nil {
			continue
		}
		if _, ok := f.Value(req); ok {
			out = append(out, f)
		}
	}
	return out
}

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		for _, item := range t {
			if !blank(item) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, item := range t {
			if !blank(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
