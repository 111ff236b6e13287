package field

import "sync"

// BindingState tracks how a relation's resource was resolved.
type BindingState int

const (
	Unresolved BindingState = iota
	ExplicitlyBound
	LazilyResolved
	ResolutionFailed
)

func (s BindingState) String() string {
	switch s {
	case ExplicitlyBound:
		return "explicitly-bound"
	case LazilyResolved:
		return "lazily-resolved"
	case ResolutionFailed:
		return "resolution-failed"
	default:
		return "unresolved"
	}
}

type binding struct {
	mu       sync.Mutex
	state    BindingState
	resource Resource
	registry Registry
}

func (b *binding) init(relational bool, explicit Resource, registry Registry) {
	b.registry = registry
	if relational && explicit != nil {
		b.resource = explicit
		b.state = ExplicitlyBound
	}
}

// peek looks the resource up without moving the state machine.
func (b *binding) peek(key string) (Resource, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == ExplicitlyBound || b.state == LazilyResolved {
		return b.resource, true
	}
	if b.state == ResolutionFailed || b.registry == nil || key == "" {
		return nil, false
	}
	res, ok := b.registry.Lookup(key)
	if !ok || res == nil {
		return nil, false
	}
	return res, true
}

// Resource returns the bound resource. The first access of an unbound
// relation resolves it through the registry; the outcome is kept for the
// node's lifetime, including failures. Without a registry the state stays
// Unresolved so a registry attached later can still resolve it.
func (n *Node) Resource() (Resource, bool) {
	b := &n.binding
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case ExplicitlyBound, LazilyResolved:
		return b.resource, true
	case ResolutionFailed:
		return nil, false
	}
	if n.relation == "" || b.registry == nil {
		return nil, false
	}

	if res, ok := b.registry.Lookup(n.ResourceKey()); ok && res != nil {
		b.resource = res
		b.state = LazilyResolved
		return res, true
	}
	b.state = ResolutionFailed
	return nil, false
}

// BindingState reports the current binding state.
func (n *Node) BindingState() BindingState {
	n.binding.mu.Lock()
	defer n.binding.mu.Unlock()
	return n.binding.state
}

// AttachRegistry sets the registry of f and its descendants where none was
// configured. It reports whether f itself accepted the registry.
func AttachRegistry(f Field, reg Registry) bool {
	if f == nil || reg == nil {
		return false
	}
	n := f.node()
	n.binding.mu.Lock()
	attached := n.binding.registry == nil
	if attached {
		n.binding.registry = reg
	}
	n.binding.mu.Unlock()

	for _, child := range n.children {
		AttachRegistry(child, reg)
	}
	return attached
}
