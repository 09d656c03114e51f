// Package hierarchy holds the type hierarchy that documentation is inherited through.
//
// A Builder collects declarations from any declaration source. Build links base and
// interface references by name and returns a Registry, which is read-only and safe
// for concurrent use.
package hierarchy

import (
	"fmt"
	"sort"
	"strings"
)

// Builder accumulates declarations before linking. It is not safe for concurrent use.
type Builder struct {
	decls map[string]*Declaration
	order []string
}

func NewBuilder() *Builder {
	return &Builder{
		decls: make(map[string]*Declaration),
	}
}

// Add registers a declaration. Declarations sharing an ID are merged the way
// partial types are: the first documentation and inherit directive win and
// parent references are appended without duplicates.
func (b *Builder) Add(d Declaration) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Namespace = strings.TrimSpace(d.Namespace)
	if d.ID == "" {
		d.ID = QualifiedID(d.Namespace, d.Name)
	}
	if d.ID == "" {
		return fmt.Errorf("declaration without identifier at %s:%d", d.Position.Filepath, d.Position.StartLine)
	}
	if d.Name == "" {
		d.Name = lastSegment(d.ID)
	}
	if d.Kind == "" {
		d.Kind = KindClass
	}

	existing, ok := b.decls[d.ID]
	if !ok {
		decl := d
		b.decls[d.ID] = &decl
		b.order = append(b.order, d.ID)
		return nil
	}

	if existing.Kind != d.Kind {
		return fmt.Errorf("conflicting kinds for %s: %s and %s", d.ID, existing.Kind, d.Kind)
	}
	if existing.Doc == nil {
		existing.Doc = d.Doc
	}
	if existing.Inherit == nil {
		existing.Inherit = d.Inherit
	}
	if existing.Base == "" {
		existing.Base = d.Base
	}
	existing.Interfaces = appendUnique(existing.Interfaces, d.Interfaces...)
	existing.Parents = appendUnique(existing.Parents, d.Parents...)
	return nil
}

// Len returns the number of distinct declarations added so far.
func (b *Builder) Len() int {
	return len(b.decls)
}

// Build links every declaration and returns the immutable registry.
func (b *Builder) Build() *Registry {
	r := &Registry{
		nodes:      make(map[string]*TypeNode, len(b.decls)),
		nameIndex:  make(map[string][]string),
		dependents: make(map[string][]string),
	}

	for _, id := range b.order {
		r.nodes[id] = &TypeNode{Declaration: *b.decls[id]}
		r.order = append(r.order, id)
	}
	sort.Strings(r.order)
	r.rebuildIndices()

	for _, id := range r.order {
		r.link(r.nodes[id])
	}
	return r
}

// Registry is the linked, read-only type hierarchy.
type Registry struct {
	nodes map[string]*TypeNode
	order []string

	// Name -> []ID, for references that are not fully qualified.
	nameIndex map[string][]string

	// Ancestor ID -> IDs of types that name it as base or interface.
	dependents map[string][]string

	Unresolved []UnresolvedRef
}

func (r *Registry) rebuildIndices() {
	for _, id := range r.order {
		n := r.nodes[id]
		r.nameIndex[n.Name] = append(r.nameIndex[n.Name], id)
		if simple := lastSegment(n.Name); simple != n.Name {
			r.nameIndex[simple] = append(r.nameIndex[simple], id)
		}
	}
}

func (r *Registry) link(n *TypeNode) {
	if len(n.Parents) > 0 && n.Base == "" && len(n.Interfaces) == 0 {
		r.linkParents(n)
		return
	}

	if n.Base != "" {
		if id, ok := r.resolveRef(n, n.Base, RoleBase); ok {
			n.BaseID = id
			r.dependents[id] = append(r.dependents[id], n.ID)
		}
	}
	for _, ref := range n.Interfaces {
		if id, ok := r.resolveRef(n, ref, RoleInterface); ok {
			n.InterfaceIDs = append(n.InterfaceIDs, id)
			r.dependents[id] = append(r.dependents[id], n.ID)
		}
	}
}

// linkParents classifies an unlabelled parent list: only the first entry of a
// class or record may be the base type.
func (r *Registry) linkParents(n *TypeNode) {
	for i, ref := range n.Parents {
		role := RoleInterface
		if i == 0 && n.Kind.CanBeBase() {
			if target, _, _ := r.lookup(ref, n.Namespace); target != nil {
				if target.Kind.CanBeBase() {
					role = RoleBase
				}
			} else if !looksLikeInterface(ref) {
				role = RoleBase
			}
		}

		id, ok := r.resolveRef(n, ref, role)
		if !ok {
			continue
		}
		if role == RoleBase {
			n.BaseID = id
		} else {
			n.InterfaceIDs = append(n.InterfaceIDs, id)
		}
		r.dependents[id] = append(r.dependents[id], n.ID)
	}
}

func (r *Registry) resolveRef(n *TypeNode, ref string, role RefRole) (string, bool) {
	target, reason, candidates := r.lookup(ref, n.Namespace)
	if target == nil {
		r.Unresolved = append(r.Unresolved, UnresolvedRef{
			From:       n.ID,
			Target:     ref,
			Role:       role,
			Reason:     reason,
			Candidates: candidates,
		})
		return "", false
	}
	return target.ID, true
}

// Lookup resolves a type reference as written inside fromNamespace.
func (r *Registry) Lookup(ref, fromNamespace string) (*TypeNode, bool) {
	n, _, _ := r.lookup(ref, fromNamespace)
	return n, n != nil
}

func (r *Registry) lookup(ref, fromNamespace string) (*TypeNode, UnresolvedReason, []string) {
	name := NormalizeRef(ref)
	if name == "" {
		return nil, ReasonNoCandidate, nil
	}

	// 1. Relative to the referencing namespace and each enclosing one
	if strings.HasPrefix(strings.TrimSpace(ref), "global::") {
		fromNamespace = ""
	}
	for ns := fromNamespace; ns != ""; ns = parentNamespace(ns) {
		if n, ok := r.nodes[ns+"."+name]; ok {
			return n, "", nil
		}
	}

	// 2. Exact identifier, which is also the global namespace
	if n, ok := r.nodes[name]; ok {
		return n, "", nil
	}

	// 3. Unique simple name
	ids := r.nameIndex[name]
	switch len(ids) {
	case 0:
		return nil, ReasonNoCandidate, nil
	case 1:
		return r.nodes[ids[0]], "", nil
	default:
		return nil, ReasonAmbiguous, append([]string(nil), ids...)
	}
}

// Get returns the node registered under id.
func (r *Registry) Get(id string) (*TypeNode, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Nodes returns all nodes ordered by ID.
func (r *Registry) Nodes() []*TypeNode {
	out := make([]*TypeNode, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.nodes[id])
	}
	return out
}

// Declarations returns the declarations the registry was built from, ordered by ID.
func (r *Registry) Declarations() []Declaration {
	out := make([]Declaration, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.nodes[id].Declaration)
	}
	return out
}

// Dependents returns the types that directly name id as base or interface.
func (r *Registry) Dependents(id string) []*TypeNode {
	var out []*TypeNode
	for _, depID := range r.dependents[id] {
		if n, ok := r.nodes[depID]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (r *Registry) UnresolvedReasonCounts() map[UnresolvedReason]int {
	counts := make(map[UnresolvedReason]int)
	for _, u := range r.Unresolved {
		reason := u.Reason
		if reason == "" {
			reason = ReasonNoCandidate
		}
		counts[reason]++
	}
	return counts
}

// QualifiedID joins a namespace and a type name into a registry identifier.
func QualifiedID(namespace, name string) string {
	if namespace == "" {
		return name
	}
	if name == "" {
		return ""
	}
	return namespace + "." + name
}

// NormalizeRef strips decorations that do not take part in type identity:
// the "T:" documentation-ID prefix, "global::" and generic arguments.
func NormalizeRef(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "T:")
	ref = strings.TrimPrefix(ref, "global::")
	if i := strings.IndexAny(ref, "<{`"); i >= 0 {
		ref = ref[:i]
	}
	return strings.TrimSpace(ref)
}

func looksLikeInterface(ref string) bool {
	name := lastSegment(NormalizeRef(ref))
	return len(name) >= 2 && name[0] == 'I' && name[1] >= 'A' && name[1] <= 'Z'
}

func parentNamespace(ns string) string {
	if i := strings.LastIndex(ns, "."); i >= 0 {
		return ns[:i]
	}
	return ""
}

func lastSegment(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		found := false
		for _, d := range dst {
			if d == it {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, it)
		}
	}
	return dst
}
