package orchestrator

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/goliatone/go-formfields/internal/dotpath"
	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/filter"
	"github.com/goliatone/go-formfields/pkg/model"
	"github.com/goliatone/go-formfields/pkg/resource"
	"github.com/goliatone/go-formfields/pkg/value"
	"github.com/goliatone/go-formfields/pkg/visibility"
)

// FormView is the create/edit form of a resource.
type FormView struct {
	Resource string      `json:"resource"`
	Title    string      `json:"title"`
	Action   string      `json:"action"`
	Fields   []FieldView `json:"fields"`
	Errors   []string    `json:"errors,omitempty"`
}

// FieldView is one rendered field. Containers carry Children; inline to-many
// relations carry Rows plus a Template row named with the index placeholder.
type FieldView struct {
	ID         uint64            `json:"id"`
	Kind       field.Kind        `json:"kind"`
	Label      string            `json:"label"`
	Name       string            `json:"name"`
	Path       string            `json:"path"`
	Component  string            `json:"component"`
	Value      any               `json:"value,omitempty"`
	Source     value.Source      `json:"source,omitempty"`
	Display    string            `json:"display,omitempty"`
	Hint       string            `json:"hint,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Choices    []field.Choice    `json:"choices,omitempty"`
	Resource   string            `json:"resource,omitempty"`
	Errors     []string          `json:"errors,omitempty"`
	Children   []FieldView       `json:"children,omitempty"`
	Rows       []FieldRow        `json:"rows,omitempty"`
	Template   []FieldView       `json:"template,omitempty"`
}

// FieldRow is one row of an inline has-many relation.
type FieldRow struct {
	Index  int         `json:"index"`
	Fields []FieldView `json:"fields"`
}

// DetailView is the read-only page of one record.
type DetailView struct {
	Resource string      `json:"resource"`
	Title    string      `json:"title"`
	Key      any         `json:"key"`
	Fields   []FieldView `json:"fields"`
	Actions  []string    `json:"actions,omitempty"`
}

// IndexView is one page of a resource listing.
type IndexView struct {
	Resource string       `json:"resource"`
	Title    string       `json:"title"`
	Page     int          `json:"page"`
	PerPage  int          `json:"perPage"`
	Columns  []ColumnView `json:"columns"`
	Rows     []RowView    `json:"rows"`
	Filters  []FilterView `json:"filters,omitempty"`
	Tags     []TagView    `json:"tags,omitempty"`
}

// ColumnView is an index column header.
type ColumnView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// RowView is one listed record.
type RowView struct {
	Key     any         `json:"key"`
	Fields  []FieldView `json:"fields"`
	Actions []string    `json:"actions,omitempty"`
}

// FilterView describes a filter input and its current value.
type FilterView struct {
	Kind   filter.Kind `json:"kind"`
	Name   string      `json:"name"`
	Label  string      `json:"label"`
	Value  any         `json:"value,omitempty"`
	Active bool        `json:"active"`
}

// TagView describes a query tag link.
type TagView struct {
	Label  string `json:"label"`
	URI    string `json:"uri"`
	Icon   string `json:"icon,omitempty"`
	Active bool   `json:"active"`
}

type formBuilder struct {
	o      *Orchestrator
	req    Request
	scope  visibility.Scope
	errors map[string][]string
}

func (b *formBuilder) fields(ctx context.Context, fields []field.Field, m model.Model, indexes ...int) ([]FieldView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scope := b.scope
	scope.Model = m
	visible, err := b.o.checker.Filter(fields, scope)
	if err != nil {
		return nil, err
	}

	out := make([]FieldView, 0, len(visible))
	for _, f := range visible {
		view, err := b.field(ctx, f, m, indexes)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (b *formBuilder) field(ctx context.Context, f field.Field, m model.Model, indexes []int) (FieldView, error) {
	view := b.o.baseView(f, indexes...)
	view.Errors = b.errors[view.Path]

	switch {
	case f.Kind() == field.KindGroup:
		children, err := b.fields(ctx, childrenOf(f), m, indexes...)
		if err != nil {
			return view, err
		}
		view.Children = children
		return view, nil

	case isResourceMode(f):
		return view, nil

	case f.RelationKind() == field.RelationOneToOne:
		var related model.Model
		if stored, ok := b.o.resolver.Stored(f, m); ok {
			related, _ = stored.(model.Model)
		}
		children, err := b.fields(ctx, childrenOf(f), related, indexes...)
		if err != nil {
			return view, err
		}
		view.Children = children
		return view, nil

	case f.RelationKind() == field.RelationOneToMany:
		return b.rows(ctx, view, f, m, indexes)
	}

	resolved := b.o.resolver.Resolve(f, m, b.req.Input, indexes...)
	view.Value = resolved.Value
	view.Source = resolved.Source
	return view, nil
}

// rows expands an inline has-many relation. The previous submission decides
// the row count when present so failed submissions keep their added rows.
func (b *formBuilder) rows(ctx context.Context, view FieldView, f field.Field, m model.Model, indexes []int) (FieldView, error) {
	var records []model.Model
	if stored, ok := b.o.resolver.Stored(f, m); ok {
		records, _ = stored.([]model.Model)
	}
	positions := lo.Range(len(records))
	if b.req.Input != nil {
		if old, ok := b.req.Input.Old(f.OldKey(indexes...)); ok {
			if present, ok := rowIndexes(old); ok {
				positions = present
			}
		}
	}

	children := childrenOf(f)
	for _, i := range positions {
		var rec model.Model
		if i < len(records) {
			rec = records[i]
		}
		row, err := b.fields(ctx, children, rec, append(append([]int(nil), indexes...), i)...)
		if err != nil {
			return view, err
		}
		view.Rows = append(view.Rows, FieldRow{Index: i, Fields: row})
	}

	template, err := b.fields(ctx, children, nil, indexes...)
	if err != nil {
		return view, err
	}
	view.Template = template
	return view, nil
}

func (o *Orchestrator) baseView(f field.Field, indexes ...int) FieldView {
	view := FieldView{
		ID:    f.ID(),
		Kind:  f.Kind(),
		Label: f.Label(),
		Name:  f.Name(indexes...),
		Path:  f.NameDot(indexes...),
	}
	if component, ok := o.widgets.Resolve(f); ok {
		view.Component = component
	}
	if h, ok := f.(interface{ Hint() string }); ok {
		view.Hint = h.Hint()
	}
	if a, ok := f.(interface{ Attributes() map[string]string }); ok {
		view.Attributes = a.Attributes()
	}
	if s, ok := f.(*field.Select); ok {
		view.Choices = s.Choices()
	}
	if _, ok := f.(field.HasRelationship); ok {
		if res, bound := f.Resource(); bound {
			view.Resource = res.Key()
		}
	}
	return view
}

func (o *Orchestrator) displayView(f field.Field, m model.Model) FieldView {
	view := o.baseView(f)
	view.Display = o.resolver.Display(f, m)
	return view
}

// formValues gathers the form value of every top-level field for visibility
// rules, keyed by dotted path.
func (o *Orchestrator) formValues(fields []field.Field, req Request) map[string]any {
	return leafValues(fields, func(f field.Field) (any, bool) {
		return o.resolver.FormValue(f, req.Model, req.Input), true
	})
}

// requestValues is formValues for submissions: rules see what is about to be
// persisted.
func (o *Orchestrator) requestValues(fields []field.Field, req Request) map[string]any {
	return leafValues(fields, func(f field.Field) (any, bool) {
		return o.resolver.RequestValue(f, req.Input)
	})
}

// leafValues walks fields through groups. Inline relations are skipped; their
// rows have no single value.
func leafValues(fields []field.Field, valueOf func(field.Field) (any, bool)) map[string]any {
	out := make(map[string]any)
	var walk func(fields []field.Field)
	walk = func(fields []field.Field) {
		for _, f := range fields {
			if f.Kind() == field.KindGroup {
				walk(childrenOf(f))
				continue
			}
			switch f.RelationKind() {
			case field.RelationOneToOne, field.RelationOneToMany:
				continue
			}
			if v, ok := valueOf(f); ok {
				out[f.NameDot()] = v
			}
		}
	}
	walk(fields)
	return out
}

func (o *Orchestrator) collect(ctx context.Context, out map[string]any, fields []field.Field, scope visibility.Scope, req model.Request, indexes ...int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	visible, err := o.checker.Filter(fields, scope)
	if err != nil {
		return err
	}
	for _, f := range visible {
		switch {
		case f.Kind() == field.KindGroup:
			if err := o.collect(ctx, out, childrenOf(f), scope, req, indexes...); err != nil {
				return err
			}
			continue
		case isResourceMode(f):
			continue
		case f.RelationKind() == field.RelationOneToOne:
			if err := o.collect(ctx, out, childrenOf(f), scope, req, indexes...); err != nil {
				return err
			}
			continue
		case f.RelationKind() == field.RelationOneToMany:
			present, _ := rowIndexes(model.InputOr(req, f.NameDot(indexes...), nil))
			for _, i := range present {
				row := append(append([]int(nil), indexes...), i)
				if err := o.collect(ctx, out, childrenOf(f), scope, req, row...); err != nil {
					return err
				}
			}
			continue
		}
		if v, ok := o.resolver.RequestValue(f, req, indexes...); ok {
			dotpath.Set(out, f.NameDot(indexes...), v)
		}
	}
	return nil
}

func (o *Orchestrator) actions(res *resource.Resource, actor any, m model.Model) []string {
	allowed := lo.Filter(res.ActiveActions(), func(a resource.Action, _ int) bool {
		return a != resource.ActionCreate && res.Can(string(a), actor, m)
	})
	return lo.Map(allowed, func(a resource.Action, _ int) string { return string(a) })
}

func (o *Orchestrator) filters(res *resource.Resource, req model.Request) []FilterView {
	return lo.Map(res.Filters(), func(flt filter.Filter, _ int) FilterView {
		v, ok := flt.Value(req)
		return FilterView{
			Kind:   flt.Kind(),
			Name:   flt.ParamName(),
			Label:  flt.Field().Label(),
			Value:  v,
			Active: ok,
		}
	})
}

func (o *Orchestrator) tags(res *resource.Resource, req Request) []TagView {
	var out []TagView
	for _, tag := range res.QueryTags() {
		if !tag.Visible(req.Actor) {
			continue
		}
		out = append(out, TagView{
			Label:  tag.Label(),
			URI:    tag.URI(),
			Icon:   tag.Icon(),
			Active: tag.URI() == req.Tag,
		})
	}
	return out
}

// rowIndexes returns the submitted row indexes in ascending order: every
// position of a list, or the numeric keys of a map ("comments[2][body]"
// parses to {"2": {...}}). Sparse keys keep their index and add no gap rows.
func rowIndexes(v any) ([]int, bool) {
	switch rows := v.(type) {
	case []any:
		return lo.Range(len(rows)), true
	case map[string]any:
		out := make([]int, 0, len(rows))
		for key := range rows {
			if i, err := strconv.Atoi(key); err == nil && i >= 0 {
				out = append(out, i)
			}
		}
		slices.Sort(out)
		return out, true
	default:
		return nil, false
	}
}

func childrenOf(f field.Field) []field.Field {
	if c, ok := f.(field.HasFields); ok {
		return c.Fields()
	}
	return nil
}

func isResourceMode(f field.Field) bool {
	m, ok := f.(interface{ IsResourceModeField() bool })
	return ok && m.IsResourceModeField()
}

func keyOf(m model.Model, primaryKey string) any {
	if m == nil {
		return nil
	}
	v, _ := m.Attribute(primaryKey)
	return v
}

func pageOf(req model.Request) int {
	raw := model.InputOr(req, PageParam, nil)
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	page, err := cast.ToIntE(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
