package hierarchy

type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindStruct    Kind = "struct"
	KindRecord    Kind = "record"
)

// IsInterface reports whether the kind can only appear in the interface list of a derived type.
func (k Kind) IsInterface() bool {
	return k == KindInterface
}

// CanBeBase reports whether the kind can be the base type of a class-like declaration.
func (k Kind) CanBeBase() bool {
	return k == KindClass || k == KindRecord
}

type UnresolvedReason string

const (
	ReasonNoCandidate UnresolvedReason = "no_candidate"
	ReasonAmbiguous   UnresolvedReason = "ambiguous"
)

type RefRole string

const (
	RoleBase      RefRole = "base"
	RoleInterface RefRole = "interface"
)

// DocumentationBlock is the documentation attached to a declaration.
// The resolver treats it as opaque content.
type DocumentationBlock struct {
	Raw       string            `json:"raw" yaml:"raw,omitempty"`
	Summary   string            `json:"summary,omitempty" yaml:"summary,omitempty"`
	Remarks   string            `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	Returns   string            `json:"returns,omitempty" yaml:"returns,omitempty"`
	Value     string            `json:"value,omitempty" yaml:"value,omitempty"`
	Tags      map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Malformed bool              `json:"malformed,omitempty" yaml:"-"`
}

// Text returns the most specific human-readable text of the block.
func (b *DocumentationBlock) Text() string {
	if b == nil {
		return ""
	}
	if b.Summary != "" {
		return b.Summary
	}
	return b.Raw
}

// InheritDirective is a declaration's request to inherit documentation,
// optionally naming an explicit target.
type InheritDirective struct {
	Cref string `json:"cref,omitempty"`
}

type Position struct {
	Filepath  string `json:"filepath,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

// Declaration is the input tuple supplied by a declaration source.
//
// Sources that know which reference is the base type fill Base and Interfaces.
// Sources that only see an ordered parent list (C# base lists) fill Parents and
// leave classification to the registry.
type Declaration struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Namespace  string              `json:"namespace,omitempty"`
	Kind       Kind                `json:"kind"`
	Doc        *DocumentationBlock `json:"doc,omitempty"`
	Inherit    *InheritDirective   `json:"inherit,omitempty"`
	Base       string              `json:"base,omitempty"`
	Interfaces []string            `json:"interfaces,omitempty"`
	Parents    []string            `json:"parents,omitempty"`
	Position   Position            `json:"position"`
}

// TypeNode is a registered, linked declaration.
type TypeNode struct {
	Declaration

	BaseID       string   `json:"base_id,omitempty"`
	InterfaceIDs []string `json:"interface_ids,omitempty"`
}

// Documented reports whether the node carries its own documentation block.
func (n *TypeNode) Documented() bool {
	return n != nil && n.Doc != nil
}

// UnresolvedRef is a base or interface reference that did not match a registered type.
type UnresolvedRef struct {
	From       string           `json:"from"`
	Target     string           `json:"target"`
	Role       RefRole          `json:"role"`
	Reason     UnresolvedReason `json:"reason"`
	Candidates []string         `json:"candidates,omitempty"`
}
