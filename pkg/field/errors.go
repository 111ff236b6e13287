package field

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCyclicTree is returned by BuildTree when a node is reachable twice, either
// through a cycle or because it is shared between containers.
var ErrCyclicTree = errors.New("field: cyclic or shared field tree")

// ConfigurationError reports a schema that cannot serve a request, such as a
// resource-mode relation whose resource cannot be resolved. It is fatal and
// never retried.
type ConfigurationError struct {
	Field    string
	Relation string
	Key      string
	Message  string
}

func (e *ConfigurationError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "invalid field configuration"
	}
	var parts []string
	if e.Field != "" {
		parts = append(parts, "field="+e.Field)
	}
	if e.Relation != "" {
		parts = append(parts, "relation="+e.Relation)
	}
	if e.Key != "" {
		parts = append(parts, "key="+e.Key)
	}
	if len(parts) == 0 {
		return "field: " + msg
	}
	return fmt.Sprintf("field: %s (%s)", msg, strings.Join(parts, " "))
}

// RequireResource returns the bound resource or a ConfigurationError. Use it
// where a relation cannot degrade gracefully (resource mode, nested forms).
func RequireResource(f Field) (Resource, error) {
	if res, ok := f.Resource(); ok {
		return res, nil
	}
	n := f.node()
	return nil, &ConfigurationError{
		Field:    n.fieldName,
		Relation: n.relation,
		Key:      n.ResourceKey(),
		Message:  "resource required for resource mode",
	}
}
