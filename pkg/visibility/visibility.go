// Package visibility decides whether a field is shown for the current record
// and actor. A field is visible when its show-when condition and its can-see
// predicate both pass; either defaults to true when not configured. Nothing is
// cached: conditions depend on live record state and are re-evaluated on every
// call.
package visibility

// Evaluator determines whether a field should be visible based on a rule
// string and optional context such as current values or scope metadata.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the current field
// values keyed by dotted path, Resolve is consulted for identifiers Values
// does not carry (typically record attributes), and Extras lets callers inject
// arbitrary context such as user roles or feature flags.
type Context struct {
	Values  map[string]any
	Resolve func(key string) (any, bool)
	Extras  map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}
