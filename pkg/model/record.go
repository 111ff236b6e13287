package model

import (
	"encoding/json"
	"fmt"
)

// Record is a map-backed Model.
type Record struct {
	Attributes map[string]any     `json:"attributes"`
	Relations  map[string]*Loaded `json:"relations,omitempty"`
}

// Loaded is a map-backed Relation.
type Loaded struct {
	Descriptor Descriptor `json:"related"`
	Items      []*Record  `json:"records,omitempty"`
}

var (
	_ Model    = (*Record)(nil)
	_ Relation = (*Loaded)(nil)
)

// NewRecord builds a Record from attributes.
func NewRecord(attributes map[string]any) *Record {
	if attributes == nil {
		attributes = make(map[string]any)
	}
	return &Record{Attributes: attributes}
}

// With attaches a loaded relation and returns the record for chaining.
func (r *Record) With(name string, related Descriptor, records ...*Record) *Record {
	if r.Relations == nil {
		r.Relations = make(map[string]*Loaded)
	}
	r.Relations[name] = &Loaded{Descriptor: related, Items: records}
	return r
}

// Attribute implements Model.
func (r *Record) Attribute(name string) (any, bool) {
	if r == nil || r.Attributes == nil {
		return nil, false
	}
	v, ok := r.Attributes[name]
	return v, ok
}

// Relation implements Model.
func (r *Record) Relation(name string) (Relation, bool) {
	if r == nil || r.Relations == nil {
		return nil, false
	}
	rel, ok := r.Relations[name]
	if !ok || rel == nil {
		return nil, false
	}
	return rel, true
}

// Related implements Relation.
func (l *Loaded) Related() Descriptor {
	return l.Descriptor
}

// Records implements Relation.
func (l *Loaded) Records() []Model {
	out := make([]Model, 0, len(l.Items))
	for _, item := range l.Items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}

// DecodeRecord parses a JSON record of the form
// {"attributes": {...}, "relations": {"author": {"related": {...}, "records": [...]}}}.
func DecodeRecord(data []byte) (*Record, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("model: decode record: %w", err)
	}
	if record.Attributes == nil {
		record.Attributes = make(map[string]any)
	}
	return &record, nil
}
