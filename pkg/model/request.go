package model

import (
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-formfields/internal/dotpath"
)

// FormRequest is a map-backed Request. Both maps are addressed by dotted
// paths and may be nested.
type FormRequest struct {
	input map[string]any
	old   map[string]any
}

var _ Request = (*FormRequest)(nil)

// NewRequest wraps submitted input and the previous submission. Either map
// may be nil.
func NewRequest(input, old map[string]any) *FormRequest {
	return &FormRequest{input: input, old: old}
}

// ParseForm converts url.Values using bracket notation
// ("filters[is_not_empty_title]=1", "tags[]=a&tags[]=b") into a FormRequest.
func ParseForm(values url.Values, old map[string]any) *FormRequest {
	input := make(map[string]any, len(values))

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := values[key]
		path := dotpath.FromBrackets(key)
		if path == "" || len(raw) == 0 {
			continue
		}
		if strings.HasSuffix(key, "[]") || len(raw) > 1 {
			list := make([]any, 0, len(raw))
			for _, v := range raw {
				list = append(list, v)
			}
			dotpath.Set(input, path, list)
			continue
		}
		dotpath.Set(input, path, raw[0])
	}
	return NewRequest(input, old)
}

// Input implements Request.
func (r *FormRequest) Input(path string) (any, bool) {
	if r == nil {
		return nil, false
	}
	return dotpath.Lookup(r.input, dotpath.FromBrackets(path))
}

// Old implements Request.
func (r *FormRequest) Old(path string) (any, bool) {
	if r == nil {
		return nil, false
	}
	return dotpath.Lookup(r.old, dotpath.FromBrackets(path))
}

// Values returns the submitted input map.
func (r *FormRequest) Values() map[string]any {
	if r == nil {
		return nil
	}
	return r.input
}
