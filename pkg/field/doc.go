// Package field defines the schema-level field tree used by admin resources.
//
// A field is built once per resource definition through one of the kind
// constructors (NewText, NewBelongsTo, NewHasMany, ...). Construction
// classifies relationship kinds, derives the column and relation names by
// convention and, for nested relation containers without explicit children,
// copies the bound resource's form fields. BuildTree then links children to
// their parents so indexed input names ("comments[0][body]") can be derived.
//
// Fields are read-only after BuildTree and safe for concurrent use. The only
// state that moves afterwards is the lazily resolved resource binding, which
// is guarded by a mutex and transitions at most once.
package field
