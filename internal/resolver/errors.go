package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution outcomes other than success. Match them with errors.Is.
var (
	// ErrUnknownType is returned when the requesting type is not registered.
	ErrUnknownType = errors.New("unknown requesting type")

	// ErrUnresolvedReference is returned when an explicit reference names no registered type.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrNotFound is returned when no ancestor carries documentation.
	ErrNotFound = errors.New("no inherited documentation found")

	// ErrCyclicHierarchy is returned when the traversal revisits a type on its own path.
	ErrCyclicHierarchy = errors.New("cyclic hierarchy")
)

// ResolutionError describes a failed query. It is local to the query and
// never affects the registry.
type ResolutionError struct {
	Type      string
	Reference string
	Path      []string
	Err       error
}

func (e *ResolutionError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("resolve %s", e.Type))
	if e.Reference != "" {
		sb.WriteString(fmt.Sprintf(" (cref %q)", e.Reference))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	if len(e.Path) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(e.Path, " -> "))
		sb.WriteString("]")
	}
	return sb.String()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
