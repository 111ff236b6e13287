package field

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/goliatone/go-formfields/internal/dotpath"
	"github.com/goliatone/go-formfields/internal/naming"
	"github.com/goliatone/go-formfields/pkg/model"
)

// IndexPlaceholder stands in for a row index when Name is called without
// enough indexes, e.g. for client-side row templates.
const IndexPlaceholder = "__index__"

var nextID atomic.Uint64

// Node carries the state shared by every kind. Concrete kinds embed it.
type Node struct {
	id        uint64
	kind      Kind
	label     string
	fieldName string
	relation  string
	relKind   RelationKind
	cfg       settings
	children  []Field

	// set by BuildTree; parent is an id, never a pointer
	parent uint64
	scope  []segment

	binding binding
}

type segment struct {
	name    string
	indexed bool
}

func (n *Node) node() *Node { return n }

func build(kind Kind, label string, cfg settings) Field {
	var f Field
	switch kind {
	case KindNumber:
		f = &Number{}
	case KindPassword:
		f = &Password{}
	case KindSelect:
		f = &Select{}
	case KindDate:
		f = &Date{}
	case KindSwitcher:
		f = &Switcher{}
	case KindFile:
		f = &File{}
	case KindBelongsTo:
		f = &BelongsTo{}
	case KindHasOne:
		f = &HasOne{}
	case KindHasMany:
		f = &HasMany{}
	case KindBelongsToMany:
		f = &BelongsToMany{}
	case KindGroup:
		f = &Group{}
	default:
		kind = KindText
		f = &Text{}
	}
	f.node().init(f, kind, label, cfg)
	return f
}

func (n *Node) init(self Field, kind Kind, label string, cfg settings) {
	n.id = nextID.Add(1)
	n.kind = kind
	n.cfg = cfg

	label = strings.TrimSpace(label)
	if label == "" {
		if cfg.name != "" {
			label = naming.Label(cfg.name)
		} else {
			label = naming.Ucfirst(string(kind))
		}
	}
	n.label = label
	n.fieldName = cfg.name
	if n.fieldName == "" {
		n.fieldName = naming.FieldFromLabel(label)
	}

	n.classify(self)
	n.binding.init(n.relation != "", cfg.resource, cfg.registry)

	switch {
	case cfg.hasChildren:
		n.children = append([]Field(nil), cfg.children...)
	case n.inheritsChildren(self):
		n.children = n.inherit()
	}
	n.cfg.children = nil
}

// classify derives the relation kind and the conventional names. It runs
// exactly once, from init.
func (n *Node) classify(self Field) {
	if _, ok := self.(HasRelationship); !ok {
		return
	}

	var matched []RelationKind
	if _, ok := self.(BelongsToRelation); ok {
		matched = append(matched, RelationBelongsTo)
	}
	if _, ok := self.(OneToOneRelation); ok {
		matched = append(matched, RelationOneToOne)
	}
	if _, ok := self.(OneToManyRelation); ok {
		matched = append(matched, RelationOneToMany)
	}
	if _, ok := self.(ManyToManyRelation); ok {
		matched = append(matched, RelationManyToMany)
	}
	if len(matched) != 1 {
		panic(fmt.Sprintf("field: %T must implement exactly one relation kind, got %d", self, len(matched)))
	}
	n.relKind = matched[0]

	base := n.cfg.name
	if base == "" {
		base = naming.Camel(n.label)
	}

	n.fieldName = base
	if n.relKind == RelationBelongsTo && !naming.HasForeignKey(base) {
		n.fieldName = naming.WithForeignKey(naming.Camel(base))
	}
	n.relation = naming.Camel(naming.RelationName(base))
}

func (n *Node) inheritsChildren(self Field) bool {
	if _, ok := self.(HasFields); !ok {
		return false
	}
	return n.relKind == RelationOneToOne || n.relKind == RelationOneToMany
}

// inherit copies the bound resource's form fields. The lookup does not move
// the binding state.
func (n *Node) inherit() []Field {
	res, ok := n.binding.peek(n.ResourceKey())
	if !ok {
		return nil
	}
	source := res.FormFields()
	out := make([]Field, 0, len(source))
	for _, child := range source {
		if child == nil {
			continue
		}
		out = append(out, Clone(child))
	}
	return out
}

// Clone returns an independent deep copy of f: children are cloned
// recursively, the copy has a new id and no parent. Kinds defined outside
// this package are cloned as their embedded built-in kind.
func Clone(f Field) Field {
	n := f.node()
	cfg := n.cfg.clone()
	if n.cfg.hasChildren || len(n.children) > 0 {
		cfg.hasChildren = true
		cfg.children = make([]Field, 0, len(n.children))
		for _, child := range n.children {
			cfg.children = append(cfg.children, Clone(child))
		}
	}
	return build(n.kind, n.label, cfg)
}

func (n *Node) ID() uint64                 { return n.id }
func (n *Node) Kind() Kind                 { return n.kind }
func (n *Node) Label() string              { return n.label }
func (n *Node) FieldName() string          { return n.fieldName }
func (n *Node) Relation() string           { return n.relation }
func (n *Node) RelationKind() RelationKind { return n.relKind }

// ValueCallback returns the stored-value override, if any.
func (n *Node) ValueCallback() func(model.Model) any { return n.cfg.value }

// Default returns the declared default.
func (n *Node) Default() (string, bool) {
	if n.cfg.def == nil {
		return "", false
	}
	return *n.cfg.def, true
}

func (n *Node) Nullable() bool { return n.cfg.nullable }

// ResourceTitleField returns the explicit title field, else the bound
// resource's, else "id".
func (n *Node) ResourceTitleField() string {
	if n.cfg.titleField != "" {
		return n.cfg.titleField
	}
	if res, ok := n.Resource(); ok {
		if title := strings.TrimSpace(res.TitleField()); title != "" {
			return title
		}
	}
	return "id"
}

// Name returns the HTML input name. Nested fields are prefixed by their
// ancestors; to-many ancestors consume one index each, outermost first.
func (n *Node) Name(indexes ...int) string {
	if len(n.scope) == 0 {
		return n.fieldName
	}
	var b strings.Builder
	next := 0
	for i, seg := range n.scope {
		if i == 0 {
			b.WriteString(seg.name)
		} else {
			b.WriteString("[" + seg.name + "]")
		}
		if !seg.indexed {
			continue
		}
		if next < len(indexes) {
			b.WriteString("[" + strconv.Itoa(indexes[next]) + "]")
			next++
		} else {
			b.WriteString("[" + IndexPlaceholder + "]")
		}
	}
	b.WriteString("[" + n.fieldName + "]")
	return b.String()
}

// NameDot returns Name in dotted notation ("comments.0.body").
func (n *Node) NameDot(indexes ...int) string {
	return dotpath.FromBrackets(n.Name(indexes...))
}

// OldKey returns the path of the previous submission for this field,
// defaulting to NameDot.
func (n *Node) OldKey(indexes ...int) string {
	if n.cfg.oldKey != "" {
		return n.cfg.oldKey
	}
	return n.NameDot(indexes...)
}

// Fields returns a copy of the children.
func (n *Node) Fields() []Field {
	if len(n.children) == 0 {
		return nil
	}
	return append([]Field(nil), n.children...)
}

// ParentID returns the id of the parent node, or 0 for roots.
func (n *Node) ParentID() uint64 { return n.parent }

func (n *Node) IsGroup() bool      { return n.kind == KindGroup }
func (n *Node) HasContainer() bool { return !n.cfg.noWrapper }
func (n *Node) Hint() string       { return n.cfg.hint }
func (n *Node) Component() string  { return n.cfg.component }
func (n *Node) AllowsHTML() bool   { return n.cfg.allowHTML }

// Attributes returns a copy of the HTML attributes.
func (n *Node) Attributes() map[string]string {
	if len(n.cfg.attributes) == 0 {
		return nil
	}
	out := make(map[string]string, len(n.cfg.attributes))
	for k, v := range n.cfg.attributes {
		out[k] = v
	}
	return out
}

// HiddenOn reports whether the field is excluded from ctx.
func (n *Node) HiddenOn(ctx Context) bool { return n.cfg.hidden[ctx] }

func (n *Node) ShowWhenRule() string                 { return n.cfg.showRule }
func (n *Node) ShowWhenFunc() func(model.Model) bool { return n.cfg.showFn }
func (n *Node) CanSeeFunc() func(actor any) bool     { return n.cfg.canSee }
func (n *Node) IsResourceMode() bool                 { return n.cfg.resourceMode }
func (n *Node) IsFullPage() bool                     { return n.cfg.fullPage }

// IsResourceModeField reports whether a one-to-one or one-to-many relation is
// rendered through its resource.
func (n *Node) IsResourceModeField() bool {
	return (n.relKind == RelationOneToOne || n.relKind == RelationOneToMany) && n.cfg.resourceMode
}

// ResourceKey returns the registry key used for lazy binding: the explicit
// key, else the convention derived from the relation name.
func (n *Node) ResourceKey() string {
	if n.cfg.resourceKey != "" {
		return n.cfg.resourceKey
	}
	if n.relation == "" {
		return ""
	}
	return naming.ResourceKey(n.relation)
}

// scopedName is the dotted name without row indexes ("comments.body").
func (n *Node) scopedName() string {
	if len(n.scope) == 0 {
		return n.fieldName
	}
	parts := make([]string, 0, len(n.scope)+1)
	for _, seg := range n.scope {
		parts = append(parts, seg.name)
	}
	return strings.Join(append(parts, n.fieldName), ".")
}
