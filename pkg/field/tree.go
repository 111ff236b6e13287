package field

import "fmt"

// Tree indexes a linked field forest by id.
type Tree struct {
	roots  []Field
	byID   map[uint64]Field
	parent map[uint64]uint64
}

// BuildTree links every descendant of roots to its parent and records the
// naming scope used by Name. A node reachable twice, or already linked under
// a different parent, yields ErrCyclicTree and leaves every node untouched.
// Building the same forest again is a no-op.
func BuildTree(roots ...Field) (*Tree, error) {
	t := &Tree{
		roots:  append([]Field(nil), roots...),
		byID:   make(map[uint64]Field),
		parent: make(map[uint64]uint64),
	}

	type link struct {
		child  *Node
		parent uint64
		scope  []segment
	}
	var links []link

	var visit func(f Field, parent uint64, scope []segment) error
	visit = func(f Field, parent uint64, scope []segment) error {
		if f == nil {
			return nil
		}
		n := f.node()
		if _, seen := t.byID[n.id]; seen {
			return fmt.Errorf("%w: %q (id %d) reached twice", ErrCyclicTree, n.fieldName, n.id)
		}
		if n.parent != 0 && n.parent != parent {
			return fmt.Errorf("%w: %q already belongs to node %d", ErrCyclicTree, n.fieldName, n.parent)
		}
		t.byID[n.id] = f
		if parent != 0 {
			t.parent[n.id] = parent
		}
		links = append(links, link{child: n, parent: parent, scope: scope})

		childScope := scope
		if _, ok := f.(HasFields); ok && n.kind != KindGroup {
			childScope = append(append([]segment(nil), scope...), segment{
				name:    n.fieldName,
				indexed: n.relKind == RelationOneToMany || n.relKind == RelationManyToMany,
			})
		}
		for _, child := range n.children {
			if err := visit(child, n.id, childScope); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := visit(root, 0, nil); err != nil {
			return nil, err
		}
	}

	for _, l := range links {
		l.child.parent = l.parent
		l.child.scope = l.scope
	}
	return t, nil
}

// MustBuildTree is like BuildTree but panics on error. Intended for
// init-time schema wiring.
func MustBuildTree(roots ...Field) *Tree {
	t, err := BuildTree(roots...)
	if err != nil {
		panic(err)
	}
	return t
}

// Roots returns the top-level fields in declaration order.
func (t *Tree) Roots() []Field {
	return append([]Field(nil), t.roots...)
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.byID) }

// Lookup returns the node with the given id.
func (t *Tree) Lookup(id uint64) (Field, bool) {
	f, ok := t.byID[id]
	return f, ok
}

// Parent returns the parent of f within the tree.
func (t *Tree) Parent(f Field) (Field, bool) {
	if f == nil {
		return nil, false
	}
	id, ok := t.parent[f.ID()]
	if !ok {
		return nil, false
	}
	return t.Lookup(id)
}

// Walk visits the tree depth-first in declaration order. Returning false
// from fn skips the node's children.
func (t *Tree) Walk(fn func(f Field, depth int) bool) {
	var walk func(fields []Field, depth int)
	walk = func(fields []Field, depth int) {
		for _, f := range fields {
			if f == nil {
				continue
			}
			if fn(f, depth) {
				walk(f.node().children, depth+1)
			}
		}
	}
	walk(t.roots, 0)
}

// Find returns the first node whose dotted name, with indexes stripped,
// equals path ("comments.body").
func (t *Tree) Find(path string) (Field, bool) {
	var found Field
	t.Walk(func(f Field, _ int) bool {
		if found != nil {
			return false
		}
		if f.node().scopedName() == path {
			found = f
			return false
		}
		return true
	})
	return found, found != nil
}
