// Package export writes diagnostic views of a type hierarchy.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"inheritdoc/internal/hierarchy"
)

var unsafeIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Mermaid renders the hierarchy as a Mermaid class diagram. Documented types
// are annotated with <<documented>>; types that request inheritance with <<inheritdoc>>.
func Mermaid(reg *hierarchy.Registry) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("classDiagram\n")

	nodes := reg.Nodes()
	ids := mermaidIDs(nodes)
	for _, n := range nodes {
		sb.WriteString(fmt.Sprintf("    class %s[\"%s\"] {\n", ids[n.ID], n.ID))
		if n.Kind.IsInterface() {
			sb.WriteString("        <<interface>>\n")
		}
		switch {
		case n.Documented():
			sb.WriteString("        <<documented>>\n")
		case n.Inherit != nil && n.Inherit.Cref != "":
			sb.WriteString(fmt.Sprintf("        <<inheritdoc %s>>\n", n.Inherit.Cref))
		case n.Inherit != nil:
			sb.WriteString("        <<inheritdoc>>\n")
		}
		sb.WriteString("    }\n")
	}

	for _, n := range nodes {
		if n.BaseID != "" {
			sb.WriteString(fmt.Sprintf("    %s <|-- %s\n", ids[n.BaseID], ids[n.ID]))
		}
		for _, id := range n.InterfaceIDs {
			sb.WriteString(fmt.Sprintf("    %s <|.. %s\n", ids[id], ids[n.ID]))
		}
	}

	sb.WriteString("```\n")
	return sb.String()
}

// mermaidIDs maps every type ID to a distinct diagram identifier. IDs that
// sanitize to the same identifier get a numeric suffix in ID order.
func mermaidIDs(nodes []*hierarchy.TypeNode) map[string]string {
	ids := make(map[string]string, len(nodes))
	used := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		base := unsafeIdent.ReplaceAllString(n.ID, "_")
		id := base
		for i := 2; used[id]; i++ {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		used[id] = true
		ids[n.ID] = id
	}
	return ids
}
