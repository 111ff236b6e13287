// Package querytag defines named query shortcuts shown above index listings
// ("Published", "Only mine"). A tag is independent of the filter engine: it
// rewrites the base query directly.
package querytag

import (
	"github.com/goliatone/go-formfields/internal/naming"
	"github.com/goliatone/go-formfields/pkg/query"
)

// Builder rewrites the index query when the tag is selected.
type Builder func(q query.Query) query.Query

// Tag is a named query shortcut.
type Tag struct {
	label  string
	icon   string
	build  Builder
	canSee func(actor any) bool
	uri    string
}

// Option customises a Tag.
type Option func(*Tag)

// Icon sets the icon name.
func Icon(name string) Option {
	return func(t *Tag) { t.icon = name }
}

// CanSee restricts the tag to actors accepted by fn.
func CanSee(fn func(actor any) bool) Option {
	return func(t *Tag) { t.canSee = fn }
}

// New builds a tag. Its URI is the slug of the label ("Only Active" ->
// "only-active").
func New(label string, build Builder, opts ...Option) *Tag {
	t := &Tag{label: label, build: build, uri: naming.Slug(label)}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func (t *Tag) Label() string { return t.label }
func (t *Tag) Icon() string  { return t.icon }
func (t *Tag) URI() string   { return t.uri }

// Visible reports whether actor may use the tag.
func (t *Tag) Visible(actor any) bool {
	return t.canSee == nil || t.canSee(actor)
}

// Apply rewrites q; a tag without a builder leaves q unchanged.
func (t *Tag) Apply(q query.Query) query.Query {
	if t == nil || t.build == nil {
		return q
	}
	return t.build(q)
}

// Find returns the tag with the given URI.
func Find(tags []*Tag, uri string) (*Tag, bool) {
	for _, t := range tags {
		if t != nil && t.uri == uri {
			return t, true
		}
	}
	return nil, false
}

// Visible returns the tags actor may use, in order.
func Visible(tags []*Tag, actor any) []*Tag {
	var out []*Tag
	for _, t := range tags {
		if t != nil && t.Visible(actor) {
			out = append(out, t)
		}
	}
	return out
}
