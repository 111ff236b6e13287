package visibility

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/model"
)

// ErrNoEvaluator is returned when a field declares a show-when rule but the
// checker has no evaluator.
var ErrNoEvaluator = errors.New("visibility: rule declared without an evaluator")

// Scope carries the per-request inputs of a visibility check.
type Scope struct {
	// Model is the record being displayed; nil on create forms.
	Model model.Model
	// Actor is passed to can-see predicates.
	Actor any
	// Values holds current field values keyed by dotted path. Rule
	// identifiers resolve here first, then against Model attributes.
	Values map[string]any
	Extras map[string]any
	// Context, when set, also applies the field's HideOn* flags.
	Context field.Context
}

// Checker combines show-when and can-see predicates.
type Checker struct {
	evaluator Evaluator
	logger    *zap.Logger
}

// CheckerOption customises a Checker.
type CheckerOption func(*Checker)

// WithLogger sets the logger used for rule failures.
func WithLogger(logger *zap.Logger) CheckerOption {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChecker builds a Checker evaluating show-when rules with evaluator.
func NewChecker(evaluator Evaluator, opts ...CheckerOption) *Checker {
	c := &Checker{evaluator: evaluator, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Visible reports whether f is shown for scope.
func (c *Checker) Visible(f field.Field, scope Scope) (bool, error) {
	if scope.Context != "" && hiddenOn(f, scope.Context) {
		return false, nil
	}
	if !c.CanSee(f, scope.Actor) {
		return false, nil
	}
	return c.ShowWhen(f, scope)
}

// CanSee evaluates the field's can-see predicate.
func (c *Checker) CanSee(f field.Field, actor any) bool {
	fn := canSeeFunc(f)
	if fn == nil {
		return true
	}
	return fn(actor)
}

// ShowWhen evaluates the field's declarative condition: the callback first,
// then the rule.
func (c *Checker) ShowWhen(f field.Field, scope Scope) (bool, error) {
	rule, fn := showWhen(f)
	if fn != nil && !fn(scope.Model) {
		return false, nil
	}
	if rule == "" {
		return true, nil
	}
	if c.evaluator == nil {
		return false, fmt.Errorf("%w: %s", ErrNoEvaluator, f.NameDot())
	}

	ok, err := c.evaluator.Eval(f.NameDot(), rule, scope.context())
	if err != nil {
		c.logger.Warn("visibility rule failed",
			zap.String("field", f.NameDot()),
			zap.String("rule", rule),
			zap.Error(err),
		)
		return false, fmt.Errorf("visibility: %s: %w", f.NameDot(), err)
	}
	return ok, nil
}

// Filter returns the visible fields of one level, preserving order. Children
// are not visited; callers filter each container's Fields when they descend.
func (c *Checker) Filter(fields []field.Field, scope Scope) ([]field.Field, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]field.Field, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		ok, err := c.Visible(f, scope)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s Scope) context() Context {
	ctx := Context{Values: s.Values, Extras: s.Extras}
	if s.Model != nil {
		m := s.Model
		ctx.Resolve = m.Attribute
	}
	return ctx
}

type ruled interface {
	ShowWhenRule() string
	ShowWhenFunc() func(model.Model) bool
}

type guarded interface {
	CanSeeFunc() func(actor any) bool
}

type contextual interface {
	HiddenOn(ctx field.Context) bool
}

func showWhen(f field.Field) (string, func(model.Model) bool) {
	r, ok := f.(ruled)
	if !ok {
		return "", nil
	}
	return r.ShowWhenRule(), r.ShowWhenFunc()
}

func canSeeFunc(f field.Field) func(actor any) bool {
	g, ok := f.(guarded)
	if !ok {
		return nil
	}
	return g.CanSeeFunc()
}

func hiddenOn(f field.Field, ctx field.Context) bool {
	h, ok := f.(contextual)
	return ok && h.HiddenOn(ctx)
}
