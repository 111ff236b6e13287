package field

import (
	"github.com/goliatone/go-formfields/pkg/model"
)

// Kind identifies a concrete field type.
type Kind string

const (
	KindText          Kind = "text"
	KindNumber        Kind = "number"
	KindPassword      Kind = "password"
	KindSelect        Kind = "select"
	KindDate          Kind = "date"
	KindSwitcher      Kind = "switcher"
	KindFile          Kind = "file"
	KindBelongsTo     Kind = "belongs-to"
	KindHasOne        Kind = "has-one"
	KindHasMany       Kind = "has-many"
	KindBelongsToMany Kind = "belongs-to-many"
	KindGroup         Kind = "group"
)

// Kinds lists every built-in kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindText, KindNumber, KindPassword, KindSelect, KindDate, KindSwitcher,
		KindFile, KindBelongsTo, KindHasOne, KindHasMany, KindBelongsToMany, KindGroup,
	}
}

// RelationKind is the classification computed once at construction.
type RelationKind int

const (
	RelationNone RelationKind = iota
	RelationBelongsTo
	RelationOneToOne
	RelationOneToMany
	RelationManyToMany
)

func (k RelationKind) String() string {
	switch k {
	case RelationBelongsTo:
		return "belongs-to"
	case RelationOneToOne:
		return "one-to-one"
	case RelationOneToMany:
		return "one-to-many"
	case RelationManyToMany:
		return "many-to-many"
	default:
		return "none"
	}
}

// Singular reports whether the relation resolves to at most one record.
func (k RelationKind) Singular() bool {
	return k == RelationBelongsTo || k == RelationOneToOne
}

// Context selects the surface a field is displayed on.
type Context string

const (
	ContextIndex  Context = "index"
	ContextForm   Context = "form"
	ContextDetail Context = "detail"
)

// Field is implemented by every node in a field tree. The interface is sealed:
// external kinds embed one of the concrete types of this package.
type Field interface {
	node() *Node

	ID() uint64
	Kind() Kind
	Label() string
	FieldName() string
	Relation() string
	RelationKind() RelationKind
	Resource() (Resource, bool)
	ResourceTitleField() string
	ValueCallback() func(model.Model) any
	Default() (string, bool)
	Nullable() bool
	Name(indexes ...int) string
	NameDot(indexes ...int) string
	OldKey(indexes ...int) string
}

// HasRelationship marks fields backed by a model relation.
type HasRelationship interface {
	Field
	relationship()
}

// BelongsToRelation marks singular relations stored as a foreign key on the
// owning model.
type BelongsToRelation interface {
	HasRelationship
	belongsTo()
}

// OneToOneRelation marks singular relations stored on the related model.
type OneToOneRelation interface {
	HasRelationship
	toOne()
}

// OneToManyRelation marks plural relations stored on the related model.
type OneToManyRelation interface {
	HasRelationship
	toMany()
}

// ManyToManyRelation marks plural relations stored in a pivot table.
type ManyToManyRelation interface {
	HasRelationship
	manyToMany()
}

// HasFields marks container kinds that own an ordered list of children.
type HasFields interface {
	Field
	Fields() []Field
	container()
}

// Resource is the part of a resource definition fields depend on.
type Resource interface {
	Key() string
	TitleField() string
	FormFields() []Field
}

// Registry resolves resource keys ("comment-resource") to resources.
type Registry interface {
	Lookup(key string) (Resource, bool)
}

// RegistryFunc adapts a function into a Registry.
type RegistryFunc func(key string) (Resource, bool)

// Lookup delegates to the underlying function.
func (fn RegistryFunc) Lookup(key string) (Resource, bool) {
	return fn(key)
}
