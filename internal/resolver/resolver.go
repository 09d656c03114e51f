// Package resolver decides which ancestor's documentation a declaration inherits.
package resolver

import (
	"inheritdoc/internal/hierarchy"
)

// Via names the route a resolution took.
type Via string

const (
	ViaOwn       Via = "own"
	ViaExplicit  Via = "explicit"
	ViaBase      Via = "base"
	ViaInterface Via = "interface"
)

// Query asks for the documentation TypeID inherits. Ref, when set, names the
// explicit target of an <inheritdoc cref="..."/> tag.
type Query struct {
	TypeID string `json:"type"`
	Ref    string `json:"ref,omitempty"`
}

// QueryFor builds the query implied by a node's own inherit directive.
func QueryFor(n *hierarchy.TypeNode) Query {
	q := Query{TypeID: n.ID}
	if n.Inherit != nil {
		q.Ref = n.Inherit.Cref
	}
	return q
}

// Resolution is a successful lookup.
type Resolution struct {
	Block    *hierarchy.DocumentationBlock `json:"block"`
	SourceID string                        `json:"source"`
	Via      Via                           `json:"via"`
	Path     []string                      `json:"path"`
}

type Options struct {
	// PreferOwn returns a type's own documentation instead of deferring to its
	// ancestors when the query has no explicit reference.
	PreferOwn bool

	// IncludeUndocumented makes ResolveAll also query undocumented types that
	// carry no inherit directive.
	IncludeUndocumented bool

	// Workers bounds ResolveAll concurrency. Values below 1 mean 1.
	Workers int
}

// InheritanceResolver is a pure query over a registry and is safe for concurrent use.
type InheritanceResolver struct {
	reg  *hierarchy.Registry
	opts Options
}

func New(reg *hierarchy.Registry, opts Options) *InheritanceResolver {
	return &InheritanceResolver{reg: reg, opts: opts}
}

// Resolve returns the documentation block the queried type inherits.
//
// With an explicit reference the named type's documentation is used, or, if it
// has none, the documentation its own ancestors yield. Without one the base-type
// chain is searched first and the directly implemented interfaces, in declaration
// order, only when the base chain yields nothing.
func (r *InheritanceResolver) Resolve(q Query) (*Resolution, error) {
	res, _, err := r.Trace(q)
	return res, err
}

// Trace resolves q like Resolve and also returns every type the search
// entered, in visiting order, whether or not the query succeeded.
func (r *InheritanceResolver) Trace(q Query) (*Resolution, []string, error) {
	w := newWalk(r.reg)
	res, err := r.resolve(w, q)
	return res, w.visited, err
}

func (r *InheritanceResolver) resolve(w *walk, q Query) (*Resolution, error) {
	node, ok := r.reg.Get(q.TypeID)
	if !ok {
		return nil, &ResolutionError{Type: q.TypeID, Reference: q.Ref, Err: ErrUnknownType}
	}

	w.push(node.ID)

	if q.Ref != "" {
		target, ok := r.reg.Lookup(q.Ref, node.Namespace)
		if !ok {
			return nil, &ResolutionError{Type: node.ID, Reference: q.Ref, Err: ErrUnresolvedReference}
		}
		if err := w.enter(target.ID); err != nil {
			return nil, w.fail(node.ID, q.Ref, err)
		}
		if target.Documented() {
			return w.found(target, ViaExplicit), nil
		}
		hit, via, err := w.ancestors(target)
		if err != nil {
			return nil, w.fail(node.ID, q.Ref, err)
		}
		if hit == nil {
			return nil, &ResolutionError{Type: node.ID, Reference: q.Ref, Path: []string{node.ID, target.ID}, Err: ErrNotFound}
		}
		res := w.found(hit, via)
		res.Via = ViaExplicit
		return res, nil
	}

	if r.opts.PreferOwn && node.Documented() {
		return w.found(node, ViaOwn), nil
	}

	hit, via, err := w.ancestors(node)
	if err != nil {
		return nil, w.fail(node.ID, "", err)
	}
	if hit == nil {
		return nil, &ResolutionError{Type: node.ID, Err: ErrNotFound}
	}
	return w.found(hit, via), nil
}

// walk is the per-query traversal state. onPath holds the current DFS stack;
// the done sets hold types whose search already came back empty.
type walk struct {
	reg       *hierarchy.Registry
	path      []string
	visited   []string
	onPath    map[string]bool
	doneBase  map[string]bool
	doneIface map[string]bool
	cycleAt   []string
}

func newWalk(reg *hierarchy.Registry) *walk {
	return &walk{
		reg:       reg,
		onPath:    make(map[string]bool),
		doneBase:  make(map[string]bool),
		doneIface: make(map[string]bool),
	}
}

func (w *walk) push(id string) {
	w.visited = append(w.visited, id)
	w.path = append(w.path, id)
	w.onPath[id] = true
}

func (w *walk) pop() {
	id := w.path[len(w.path)-1]
	w.path = w.path[:len(w.path)-1]
	delete(w.onPath, id)
}

func (w *walk) enter(id string) error {
	if w.onPath[id] {
		w.cycleAt = append(append([]string(nil), w.path...), id)
		return ErrCyclicHierarchy
	}
	w.push(id)
	return nil
}

func (w *walk) found(n *hierarchy.TypeNode, via Via) *Resolution {
	return &Resolution{
		Block:    n.Doc,
		SourceID: n.ID,
		Via:      via,
		Path:     append([]string(nil), w.path...),
	}
}

func (w *walk) fail(typeID, ref string, err error) error {
	return &ResolutionError{Type: typeID, Reference: ref, Path: w.cycleAt, Err: err}
}

// ancestors searches n's base chain, then n's interfaces in declaration order.
func (w *walk) ancestors(n *hierarchy.TypeNode) (*hierarchy.TypeNode, Via, error) {
	if n.BaseID != "" {
		hit, err := w.visitBase(n.BaseID)
		if hit != nil || err != nil {
			return hit, ViaBase, err
		}
	}
	for _, id := range n.InterfaceIDs {
		hit, err := w.visitInterface(id)
		if hit != nil || err != nil {
			return hit, ViaInterface, err
		}
	}
	return nil, "", nil
}

// visitBase follows base links only.
func (w *walk) visitBase(id string) (*hierarchy.TypeNode, error) {
	if w.doneBase[id] {
		return nil, nil
	}
	n, ok := w.reg.Get(id)
	if !ok {
		return nil, nil
	}
	if err := w.enter(id); err != nil {
		return nil, err
	}
	if n.Documented() {
		return n, nil
	}
	if n.BaseID != "" {
		hit, err := w.visitBase(n.BaseID)
		if hit != nil || err != nil {
			return hit, err
		}
	}
	w.pop()
	w.doneBase[id] = true
	return nil, nil
}

// visitInterface searches an interface and, depth-first, the interfaces it extends.
func (w *walk) visitInterface(id string) (*hierarchy.TypeNode, error) {
	if w.doneIface[id] {
		return nil, nil
	}
	n, ok := w.reg.Get(id)
	if !ok {
		return nil, nil
	}
	if err := w.enter(id); err != nil {
		return nil, err
	}
	if n.Documented() {
		return n, nil
	}
	hit, _, err := w.ancestors(n)
	if hit != nil || err != nil {
		return hit, err
	}
	w.pop()
	w.doneIface[id] = true
	return nil, nil
}
