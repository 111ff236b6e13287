// Package dotpath reads and writes nested map/slice payloads addressed by
// dotted paths ("author.email", "comments.0.body").
package dotpath

import (
	"reflect"
	"strconv"
	"strings"
)

// Lookup resolves path against values. An exact key match wins over traversal
// so flattened payloads ("cta.headline": "x") resolve as well.
func Lookup(values map[string]any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, segment := range strings.Split(path, ".") {
		next, ok := step(current, strings.TrimSpace(segment))
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// step descends one segment into a string-keyed map or, for numeric
// segments, a slice.
func step(container any, segment string) (any, bool) {
	if segment == "" {
		return nil, false
	}
	if m, ok := container.(map[string]any); ok {
		v, ok := m[segment]
		return v, ok
	}

	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Map:
		keyType := rv.Type().Key()
		if keyType.Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(segment).Convert(keyType))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	}
	return nil, false
}

// Set writes value at path, creating intermediate maps. Numeric segments are
// stored as map keys; Lookup resolves them either way.
func Set(values map[string]any, path string, value any) {
	parts := Split(path)
	if len(parts) == 0 || values == nil {
		return
	}
	current := values
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// FromBrackets converts an HTML input name into a dotted path:
// "filters[is_not_empty_title]" -> "filters.is_not_empty_title",
// "comments[0][body]" -> "comments.0.body". A trailing "[]" is dropped.
func FromBrackets(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, "[]")
	replacer := strings.NewReplacer("][", ".", "[", ".", "]", "")
	return strings.Trim(replacer.Replace(name), ".")
}

// Split breaks a dotted or bracketed path into its segments.
func Split(path string) []string {
	clean := FromBrackets(path)
	if clean == "" {
		return nil
	}
	raw := strings.Split(clean, ".")
	out := make([]string, 0, len(raw))
	for _, segment := range raw {
		if segment = strings.TrimSpace(segment); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}
