package value

import (
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/internal/phpdate"
	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/model"
)

// PasswordMask replaces password values on index and detail pages.
const PasswordMask = "***"

// Source names the step that produced a form value.
type Source string

const (
	SourceOld      Source = "old"
	SourceStored   Source = "stored"
	SourceDefault  Source = "default"
	SourceNullable Source = "nullable"
	SourceNone     Source = "none"
)

// Resolved is the form value of one field for one request.
type Resolved struct {
	Name    string `json:"name"`
	NameDot string `json:"path"`
	Value   any    `json:"value"`
	Source  Source `json:"source"`
}

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy
)

func defaultPolicy() *bluemonday.Policy {
	htmlPolicyOnce.Do(func() {
		htmlPolicy = bluemonday.UGCPolicy()
	})
	return htmlPolicy
}

// Resolver computes field values. It is stateless apart from its
// configuration and safe for concurrent use.
type Resolver struct {
	logger *zap.Logger
	policy *bluemonday.Policy
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for malformed values.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPolicy sets the sanitiser applied to display values of AllowHTML
// fields. Defaults to bluemonday's UGC policy.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(r *Resolver) {
		if policy != nil {
			r.policy = policy
		}
	}
}

// New builds a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.policy == nil {
		r.policy = defaultPolicy()
	}
	return r
}

// Resolve computes the form value of f. indexes address the row of every
// to-many ancestor, outermost first.
func (r *Resolver) Resolve(f field.Field, m model.Model, req model.Request, indexes ...int) Resolved {
	out := Resolved{Name: f.Name(indexes...), NameDot: f.NameDot(indexes...)}

	if f.Kind() == field.KindPassword {
		out.Value, out.Source = "", SourceNone
		return out
	}

	if req != nil {
		if old, ok := req.Old(f.OldKey(indexes...)); ok {
			out.Value, out.Source = old, SourceOld
			return out
		}
	}

	if stored, ok := r.formStored(f, m); ok {
		out.Value, out.Source = stored, SourceStored
		return out
	}

	if def, ok := f.Default(); ok {
		out.Value, out.Source = def, SourceDefault
		return out
	}
	if f.Nullable() {
		out.Value, out.Source = "", SourceNullable
		return out
	}
	out.Source = SourceNone
	return out
}

// FormValue is shorthand for Resolve(...).Value.
func (r *Resolver) FormValue(f field.Field, m model.Model, req model.Request, indexes ...int) any {
	return r.Resolve(f, m, req, indexes...).Value
}

// RequestValue returns the value to persist for f: the submitted value, else
// the default, else the previous submission. ok is false when none exists and
// the field must not be written. An unsubmitted switcher resolves to its off
// value, since unchecked inputs are not sent.
func (r *Resolver) RequestValue(f field.Field, req model.Request, indexes ...int) (any, bool) {
	if req != nil {
		if v, ok := req.Input(f.NameDot(indexes...)); ok {
			return v, true
		}
	}
	if def, ok := f.Default(); ok {
		return def, true
	}
	if req != nil {
		if v, ok := req.Old(f.OldKey(indexes...)); ok {
			return v, true
		}
	}
	if s, ok := f.(*field.Switcher); ok && req != nil {
		return s.OffValue(), true
	}
	return nil, false
}

// Stored returns the raw stored value of f: the value callback, the loaded
// relation records, or the attribute. ok is false when the record has no value.
func (r *Resolver) Stored(f field.Field, m model.Model) (any, bool) {
	if cb := f.ValueCallback(); cb != nil {
		v := cb(m)
		return v, v != nil
	}
	if m == nil {
		return nil, false
	}

	switch f.RelationKind() {
	case field.RelationOneToOne:
		records := related(f, m)
		if len(records) == 0 {
			return nil, false
		}
		return records[0], true
	case field.RelationOneToMany:
		records := related(f, m)
		return records, len(records) > 0
	case field.RelationManyToMany:
		rel, ok := m.Relation(f.Relation())
		if !ok {
			return nil, false
		}
		key := rel.Related().Key()
		keys := make([]any, 0)
		for _, rec := range rel.Records() {
			if v, ok := rec.Attribute(key); ok {
				keys = append(keys, v)
			}
		}
		return keys, true
	}

	if f.Kind() == field.KindGroup {
		return nil, false
	}
	v, ok := m.Attribute(f.FieldName())
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *Resolver) formStored(f field.Field, m model.Model) (any, bool) {
	v, ok := r.Stored(f, m)
	if !ok {
		return nil, false
	}
	d, isDate := f.(*field.Date)
	if !isDate {
		return v, true
	}
	if isBlank(v) {
		return nil, false
	}
	formatted := d.FormatInput(v)
	if formatted == "" {
		r.malformed(f, v)
	}
	return formatted, true
}

// Display returns the index/detail representation of f.
func (r *Resolver) Display(f field.Field, m model.Model) string {
	if f.Kind() == field.KindPassword {
		return PasswordMask
	}
	if f.ValueCallback() != nil {
		v, _ := r.Stored(f, m)
		return r.text(f, v)
	}

	switch f.RelationKind() {
	case field.RelationBelongsTo, field.RelationOneToOne, field.RelationOneToMany, field.RelationManyToMany:
		return r.relationTitles(f, m)
	}

	v, ok := r.Stored(f, m)
	if !ok {
		return ""
	}

	switch typed := f.(type) {
	case *field.Date:
		if isBlank(v) {
			return ""
		}
		out := typed.FormatDisplay(v)
		if out == "" {
			r.malformed(f, v)
		}
		return out
	case *field.Switcher:
		if Checked(typed, v) {
			return "Yes"
		}
		return "No"
	case *field.Select:
		return typed.ChoiceLabel(toString(v))
	case *field.File:
		return typed.URL(toString(v))
	}
	return r.text(f, v)
}

// Checked reports whether a switcher value is on.
func Checked(s *field.Switcher, v any) bool {
	if str := toString(v); str == s.OnValue() {
		return true
	} else if str == s.OffValue() {
		return false
	}
	return Truthy(v)
}

func (r *Resolver) relationTitles(f field.Field, m model.Model) string {
	if m == nil {
		return ""
	}
	records := related(f, m)
	if len(records) == 0 {
		if f.RelationKind() == field.RelationBelongsTo {
			if v, ok := m.Attribute(f.FieldName()); ok && v != nil {
				return toString(v)
			}
		}
		return ""
	}

	title := f.ResourceTitleField()
	titles := make([]string, 0, len(records))
	for _, rec := range records {
		v, ok := rec.Attribute(title)
		if !ok {
			v, _ = rec.Attribute("id")
		}
		if s := toString(v); s != "" {
			titles = append(titles, s)
		}
	}
	return strings.Join(titles, ", ")
}

func (r *Resolver) text(f field.Field, v any) string {
	s := toString(v)
	if html, ok := f.(interface{ AllowsHTML() bool }); ok && html.AllowsHTML() {
		return r.policy.Sanitize(s)
	}
	return s
}

func (r *Resolver) malformed(f field.Field, v any) {
	r.logger.Debug("malformed field value",
		zap.String("field", f.FieldName()),
		zap.String("kind", string(f.Kind())),
		zap.Any("value", v),
	)
}

func related(f field.Field, m model.Model) []model.Model {
	if m == nil || f.Relation() == "" {
		return nil
	}
	rel, ok := m.Relation(f.Relation())
	if !ok {
		return nil
	}
	return rel.Records()
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if _, ok := phpdate.Parse(v); ok {
		return false
	}
	return strings.TrimSpace(toString(v)) == ""
}

// toString renders scalars through cast and anything else with fmt.
func toString(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
