package orchestrator

import (
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-formfields/internal/dotpath"
	"github.com/goliatone/go-formfields/pkg/field"
)

// ErrorMapping splits a validation payload into field-level messages keyed by
// dotted path ("comments.0.body") and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrors attaches validation messages to the fields of tree. Keys may be
// JSON pointers ("/comments/0/body"), bracket names ("comments[0][body]") or
// dotted paths, optionally under a request wrapper ("body.title"). Row indexes
// are kept. Keys naming no field become form-level messages.
func MapErrors(tree *field.Tree, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping

	keys := lo.Keys(payload)
	slices.Sort(keys)
	for _, key := range keys {
		messages := cleanMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		path, ok := fieldPath(tree, key)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[path] = cleanMessages(append(mapping.Fields[path], messages...))
	}

	mapping.Form = cleanMessages(mapping.Form)
	return mapping
}

func cleanMessages(messages []string) []string {
	out := lo.Uniq(lo.FilterMap(messages, func(message string, _ int) (string, bool) {
		message = strings.TrimSpace(message)
		return message, message != ""
	}))
	if len(out) == 0 {
		return nil
	}
	return out
}

var formKeys = []string{"", "form", "base", "__all__", "non_field_errors", "non-field-errors"}

// wrappers are request envelopes stripped from the front of a key.
var wrappers = []string{"body", "request", "payload", "data", "attributes"}

var pointerEscapes = strings.NewReplacer("~1", "/", "~0", "~")

// fieldPath returns the indexed dotted path of the deepest field named by
// key, trying the key as given and then without wrapper segments.
func fieldPath(tree *field.Tree, key string) (string, bool) {
	segments := keySegments(key)
	if tree == nil || len(segments) == 0 {
		return "", false
	}
	if len(segments) == 1 && slices.Contains(formKeys, strings.ToLower(segments[0])) {
		return "", false
	}

	unwrapped := segments
	for len(unwrapped) > 0 && slices.Contains(wrappers, strings.ToLower(unwrapped[0])) {
		unwrapped = unwrapped[1:]
	}

	direct, _ := deepestField(tree, segments)
	stripped, _ := deepestField(tree, unwrapped)
	if len(stripped) > len(direct) {
		direct = stripped
	}
	return direct, direct != ""
}

// keySegments splits a JSON pointer on "/" and anything else on dots and
// brackets.
func keySegments(key string) []string {
	key = strings.TrimLeft(strings.TrimSpace(key), "#$")
	if !strings.HasPrefix(key, "/") {
		return dotpath.Split(key)
	}
	return lo.FilterMap(strings.Split(key, "/"), func(segment string, _ int) (string, bool) {
		segment = pointerEscapes.Replace(strings.TrimSpace(segment))
		return segment, segment != ""
	})
}

// deepestField walks segments back from the end until the index-free prefix
// names a field in tree.
func deepestField(tree *field.Tree, segments []string) (string, bool) {
	for end := len(segments); end > 0; end-- {
		named := lo.Reject(segments[:end], func(segment string, _ int) bool {
			_, err := strconv.Atoi(segment)
			return err == nil
		})
		if len(named) == 0 {
			continue
		}
		if _, ok := tree.Find(strings.Join(named, ".")); ok {
			return strings.Join(segments[:end], "."), true
		}
	}
	return "", false
}
