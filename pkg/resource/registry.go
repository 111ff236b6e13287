package resource

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/pkg/field"
)

// ErrNotFound is returned when a resource key is not registered.
var ErrNotFound = errors.New("resource: not found")

// Registry maps resource keys to resources. It is populated at startup and
// read concurrently afterwards.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]*Resource
	order     []string
	logger    *zap.Logger
}

// RegistryOption customises a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registration and lookup misses.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{resources: make(map[string]*Resource), logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var _ field.Registry = (*Registry)(nil)

// Register links the resource's field tree, attaches the registry to fields
// that have none and stores the resource under its key. Relation fields
// constructed before their target was registered resolve lazily on first
// access.
func (r *Registry) Register(res *Resource) error {
	if res == nil {
		return errors.New("resource: register nil resource")
	}
	key := strings.TrimSpace(res.key)
	if key == "" {
		return fmt.Errorf("resource: %q has no key", res.name)
	}

	tree, err := field.BuildTree(res.fields...)
	if err != nil {
		return fmt.Errorf("resource: %s: %w", key, err)
	}

	r.mu.Lock()
	if _, exists := r.resources[key]; exists {
		r.mu.Unlock()
		return fmt.Errorf("resource: %s already registered", key)
	}
	res.tree = tree
	r.resources[key] = res
	r.order = append(r.order, key)
	r.mu.Unlock()

	for _, f := range res.fields {
		field.AttachRegistry(f, r)
	}
	for _, flt := range res.filters {
		field.AttachRegistry(flt.Field(), r)
	}

	r.logger.Debug("resource registered",
		zap.String("key", key),
		zap.String("table", res.table),
		zap.Int("fields", tree.Len()),
	)
	return nil
}

// MustRegister is like Register but panics on error. Intended for init-time
// wiring.
func (r *Registry) MustRegister(resources ...*Resource) {
	for _, res := range resources {
		if err := r.Register(res); err != nil {
			panic(err)
		}
	}
}

// Lookup implements field.Registry.
func (r *Registry) Lookup(key string) (field.Resource, bool) {
	res, ok := r.Get(key)
	if !ok {
		r.logger.Debug("resource lookup missed", zap.String("key", key))
		return nil, false
	}
	return res, true
}

// Get returns the resource registered under key.
func (r *Registry) Get(key string) (*Resource, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[strings.TrimSpace(key)]
	return res, ok
}

// Resolve returns the resource or ErrNotFound.
func (r *Registry) Resolve(key string) (*Resource, error) {
	res, ok := r.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return res, nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// List returns resources in registration order.
func (r *Registry) List() []*Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Resource, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.resources[key])
	}
	return out
}

// Keys returns the registered keys sorted alphabetically.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := append([]string(nil), r.order...)
	r.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Validate resolves every resource-mode relation and reports those without a
// resource as *field.ConfigurationError values joined together. Call it once
// all resources are registered.
func (r *Registry) Validate() error {
	var errs []error
	for _, res := range r.List() {
		if res.tree == nil {
			continue
		}
		res.tree.Walk(func(f field.Field, _ int) bool {
			strict, ok := f.(interface{ IsResourceMode() bool })
			if !ok || !strict.IsResourceMode() {
				return true
			}
			if _, err := field.RequireResource(f); err != nil {
				r.logger.Warn("resource mode field without resource",
					zap.String("resource", res.key),
					zap.String("field", f.NameDot()),
					zap.Error(err),
				)
				errs = append(errs, fmt.Errorf("resource: %s: %w", res.key, err))
			}
			return true
		})
	}
	return errors.Join(errs...)
}
