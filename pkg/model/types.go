package model

// Model is the stored entity a resource describes.
type Model interface {
	// Attribute returns the stored value for a column. ok is false when the
	// attribute does not exist on the model.
	Attribute(name string) (any, bool)
	// Relation returns the loaded relation by name.
	Relation(name string) (Relation, bool)
}

// Relation exposes a loaded relationship.
type Relation interface {
	// Related describes the entity on the other side of the relation.
	Related() Descriptor
	// Records returns the loaded related models. Singular relations return at
	// most one record.
	Records() []Model
}

// Descriptor names a related entity.
type Descriptor struct {
	Name       string `json:"name"`
	Table      string `json:"table,omitempty"`
	PrimaryKey string `json:"primaryKey,omitempty"`
}

// Key returns the primary key column, defaulting to "id".
func (d Descriptor) Key() string {
	if d.PrimaryKey == "" {
		return "id"
	}
	return d.PrimaryKey
}

// Request exposes the current submission and the previous one (form
// repopulation after a failed validation).
type Request interface {
	Input(path string) (any, bool)
	Old(path string) (any, bool)
}

// InputOr returns the submitted value at path or fallback.
func InputOr(req Request, path string, fallback any) any {
	if req == nil {
		return fallback
	}
	if v, ok := req.Input(path); ok {
		return v
	}
	return fallback
}

// OldOr returns the previously submitted value at path or fallback.
func OldOr(req Request, path string, fallback any) any {
	if req == nil {
		return fallback
	}
	if v, ok := req.Old(path); ok {
		return v
	}
	return fallback
}
