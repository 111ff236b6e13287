// Package widgets chooses the component an external renderer should use for a
// field. An explicit field.Component wins; otherwise registered matchers are
// evaluated by priority.
package widgets

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/goliatone/go-formfields/pkg/field"
)

// Built-in component identifiers.
const (
	WidgetText          = "text"
	WidgetRichText      = "rich-text"
	WidgetNumber        = "number"
	WidgetPassword      = "password"
	WidgetSelect        = "select"
	WidgetMultiSelect   = "multi-select"
	WidgetDate          = "date"
	WidgetDateTime      = "datetime"
	WidgetSwitcher      = "switcher"
	WidgetFile          = "file"
	WidgetHasOne        = "has-one"
	WidgetHasMany       = "has-many"
	WidgetResourceTable = "resource-table"
	WidgetGroup         = "group"
)

// Matcher reports whether a component can render f.
type Matcher func(f field.Field) bool

type entry struct {
	component string
	priority  int
	match     Matcher
}

// Registry maps fields to components. Entries are kept ordered by descending
// priority, equal priorities in registration order, and the first matching
// entry wins.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

// NewRegistry returns a registry holding the built-in matchers.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds matcher for component at priority. Blank names and nil
// matchers are ignored.
func (r *Registry) Register(component string, priority int, matcher Matcher) {
	component = strings.TrimSpace(component)
	if r == nil || matcher == nil || component == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	at := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].priority < priority
	})
	r.entries = slices.Insert(r.entries, at, entry{component: component, priority: priority, match: matcher})
}

// Resolve returns the component for f: its explicit field.Component, else the
// first matching entry.
func (r *Registry) Resolve(f field.Field) (string, bool) {
	if f == nil {
		return "", false
	}
	if c, ok := f.(interface{ Component() string }); ok {
		if explicit := strings.TrimSpace(c.Component()); explicit != "" {
			return explicit, true
		}
	}
	if r == nil {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.match(f) {
			return e.component, true
		}
	}
	return "", false
}

func kindIs(kinds ...field.Kind) Matcher {
	return func(f field.Field) bool {
		return lo.Contains(kinds, f.Kind())
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetResourceTable, 100, func(f field.Field) bool {
		m, ok := f.(interface{ IsResourceModeField() bool })
		return ok && m.IsResourceModeField()
	})

	r.Register(WidgetMultiSelect, 90, func(f field.Field) bool {
		if f.Kind() == field.KindBelongsToMany {
			return true
		}
		s, ok := f.(*field.Select)
		return ok && s.Multiple()
	})

	r.Register(WidgetDateTime, 85, func(f field.Field) bool {
		d, ok := f.(*field.Date)
		return ok && d.InputType() == "datetime-local"
	})

	r.Register(WidgetRichText, 80, func(f field.Field) bool {
		h, ok := f.(interface{ AllowsHTML() bool })
		return f.Kind() == field.KindText && ok && h.AllowsHTML()
	})

	r.Register(WidgetSelect, 70, kindIs(field.KindSelect, field.KindBelongsTo))
	r.Register(WidgetSwitcher, 60, kindIs(field.KindSwitcher))
	r.Register(WidgetDate, 60, kindIs(field.KindDate))
	r.Register(WidgetFile, 60, kindIs(field.KindFile))
	r.Register(WidgetPassword, 60, kindIs(field.KindPassword))
	r.Register(WidgetNumber, 60, kindIs(field.KindNumber))
	r.Register(WidgetHasOne, 60, kindIs(field.KindHasOne))
	r.Register(WidgetHasMany, 60, kindIs(field.KindHasMany))
	r.Register(WidgetGroup, 60, kindIs(field.KindGroup))
	r.Register(WidgetText, 0, func(field.Field) bool { return true })
}
