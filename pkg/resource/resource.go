// Package resource binds a model to its fields, filters, query tags and
// actions, and keeps the process-wide registry that relation fields resolve
// their resources from.
package resource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-formfields/internal/naming"
	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/filter"
	"github.com/goliatone/go-formfields/pkg/model"
	"github.com/goliatone/go-formfields/pkg/query"
	"github.com/goliatone/go-formfields/pkg/querytag"
)

// Action is a resource operation that can be switched off per resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionShow   Action = "show"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// DefaultActions are active unless Actions is used.
var DefaultActions = []Action{ActionCreate, ActionShow, ActionEdit, ActionDelete}

// ErrForbidden is returned by Authorize when an action is inactive or the
// policy rejects the actor.
var ErrForbidden = errors.New("resource: forbidden")

// Policy decides whether actor may perform ability on m. m is nil for
// create and index abilities.
type Policy func(ability string, actor any, m model.Model) bool

// Resource describes one model type.
type Resource struct {
	name       string
	key        string
	title      string
	titleField string
	table      string
	primaryKey string
	fields     []field.Field
	filters    []filter.Filter
	tags       []*querytag.Tag
	actions    []Action
	policy     Policy
	sort       query.Order
	perPage    int
	tree       *field.Tree
}

// Option customises a Resource.
type Option func(*Resource)

// Key overrides the registry key derived from the name.
func Key(key string) Option {
	return func(r *Resource) { r.key = strings.TrimSpace(key) }
}

// Title sets the display title.
func Title(title string) Option {
	return func(r *Resource) { r.title = strings.TrimSpace(title) }
}

// TitleField sets the attribute displayed for records of this resource in
// relation fields.
func TitleField(name string) Option {
	return func(r *Resource) { r.titleField = strings.TrimSpace(name) }
}

// Table overrides the table derived from the name.
func Table(table string) Option {
	return func(r *Resource) { r.table = strings.TrimSpace(table) }
}

// PrimaryKey overrides the "id" primary key.
func PrimaryKey(column string) Option {
	return func(r *Resource) { r.primaryKey = strings.TrimSpace(column) }
}

// Fields declares the resource fields in display order.
func Fields(fields ...field.Field) Option {
	return func(r *Resource) { r.fields = append(r.fields, fields...) }
}

// Filters declares the index filters.
func Filters(filters ...filter.Filter) Option {
	return func(r *Resource) { r.filters = append(r.filters, filters...) }
}

// QueryTags declares the index query tags.
func QueryTags(tags ...*querytag.Tag) Option {
	return func(r *Resource) { r.tags = append(r.tags, tags...) }
}

// Actions replaces the active actions.
func Actions(actions ...Action) Option {
	return func(r *Resource) { r.actions = append([]Action{}, actions...) }
}

// WithPolicy sets the authorization policy.
func WithPolicy(p Policy) Option {
	return func(r *Resource) { r.policy = p }
}

// Sort sets the default index order.
func Sort(column string, desc bool) Option {
	return func(r *Resource) { r.sort = query.Order{Column: column, Desc: desc} }
}

// PerPage sets the index page size.
func PerPage(n int) Option {
	return func(r *Resource) { r.perPage = n }
}

// New builds a resource for the named model. "Comment" gets the key
// "comment-resource" and the table "comments" unless overridden.
func New(name string, opts ...Option) *Resource {
	name = strings.TrimSpace(name)
	r := &Resource{name: name, primaryKey: "id", perPage: 25}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.key == "" {
		r.key = naming.ResourceKey(name)
	}
	if r.table == "" {
		r.table = naming.Table(name)
	}
	if r.title == "" {
		r.title = naming.Label(r.table)
	}
	if r.actions == nil {
		r.actions = append([]Action(nil), DefaultActions...)
	}
	if r.sort.Column == "" {
		r.sort = query.Order{Column: r.primaryKey, Desc: true}
	}
	return r
}

func (r *Resource) Name() string       { return r.name }
func (r *Resource) Key() string        { return r.key }
func (r *Resource) Title() string      { return r.title }
func (r *Resource) Table() string      { return r.table }
func (r *Resource) PrimaryKey() string { return r.primaryKey }
func (r *Resource) PerPage() int       { return r.perPage }

// TitleField returns the configured title attribute; empty means the
// relation falls back to "id".
func (r *Resource) TitleField() string { return r.titleField }

// Fields returns every top-level field.
func (r *Resource) Fields() []field.Field { return append([]field.Field(nil), r.fields...) }

// FormFields returns the top-level fields shown on forms.
func (r *Resource) FormFields() []field.Field { return r.fieldsFor(field.ContextForm) }

// IndexFields returns the top-level fields shown on index listings.
func (r *Resource) IndexFields() []field.Field { return r.fieldsFor(field.ContextIndex) }

// DetailFields returns the top-level fields shown on detail pages.
func (r *Resource) DetailFields() []field.Field { return r.fieldsFor(field.ContextDetail) }

func (r *Resource) fieldsFor(ctx field.Context) []field.Field {
	return lo.Filter(r.fields, func(f field.Field, _ int) bool {
		h, ok := f.(interface{ HiddenOn(field.Context) bool })
		return !ok || !h.HiddenOn(ctx)
	})
}

// Filters returns the index filters.
func (r *Resource) Filters() []filter.Filter { return append([]filter.Filter(nil), r.filters...) }

// QueryTags returns the query tags.
func (r *Resource) QueryTags() []*querytag.Tag { return append([]*querytag.Tag(nil), r.tags...) }

// Tree returns the linked field tree; nil before registration.
func (r *Resource) Tree() *field.Tree { return r.tree }

// Field returns the field at a dotted path without row indexes
// ("comments.body").
func (r *Resource) Field(path string) (field.Field, bool) {
	if r.tree == nil {
		return nil, false
	}
	return r.tree.Find(path)
}

// ActiveActions returns the enabled actions.
func (r *Resource) ActiveActions() []Action { return append([]Action(nil), r.actions...) }

// IsActive reports whether action is enabled.
func (r *Resource) IsActive(action Action) bool { return lo.Contains(r.actions, action) }

// Can evaluates the policy; a resource without a policy allows everything.
func (r *Resource) Can(ability string, actor any, m model.Model) bool {
	if r.policy == nil {
		return true
	}
	return r.policy(ability, actor, m)
}

// Authorize requires action to be active and allowed by the policy.
func (r *Resource) Authorize(action Action, actor any, m model.Model) error {
	if !r.IsActive(action) {
		return fmt.Errorf("%w: %s is not active on %s", ErrForbidden, action, r.key)
	}
	if !r.Can(string(action), actor, m) {
		return fmt.Errorf("%w: %s on %s", ErrForbidden, action, r.key)
	}
	return nil
}

// Query returns the base index query.
func (r *Resource) Query() query.Query {
	return query.From(r.table)
}

// IndexQuery applies the selected query tag, the filters and the default
// order to the base query. An unknown tag URI is ignored.
func (r *Resource) IndexQuery(req model.Request, tagURI string, actor any) query.Query {
	q := r.Query()
	if tag, ok := querytag.Find(r.tags, tagURI); ok && tag.Visible(actor) {
		q = tag.Apply(q)
	}
	q = filter.Apply(q, req, r.filters...)
	return q.OrderBy(r.sort.Column, r.sort.Desc)
}
