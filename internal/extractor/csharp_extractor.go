package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"inheritdoc/internal/docblock"
	"inheritdoc/internal/hierarchy"
)

// CSharpExtractor implements LanguageExtractor for C# type declarations.
type CSharpExtractor struct{}

var csharpKinds = map[string]hierarchy.Kind{
	"class_declaration":     hierarchy.KindClass,
	"interface_declaration": hierarchy.KindInterface,
	"struct_declaration":    hierarchy.KindStruct,
	"record_declaration":    hierarchy.KindRecord,
}

func (c *CSharpExtractor) GetLanguage() *sitter.Language {
	return csharp.GetLanguage()
}

func (c *CSharpExtractor) GetQuery() string {
	return `
		(class_declaration) @type
		(interface_declaration) @type
		(struct_declaration) @type
		(record_declaration) @type
	`
}

func (c *CSharpExtractor) Extensions() []string {
	return []string{".cs"}
}

func (c *CSharpExtractor) ExtractDeclaration(node *sitter.Node, sourceCode []byte, filepath string) *hierarchy.Declaration {
	kind, ok := csharpKinds[node.Type()]
	if !ok {
		return nil
	}
	name := declName(node, sourceCode)
	if name == "" {
		return nil
	}

	namespace, outer := enclosingScope(node, sourceCode)
	if len(outer) > 0 {
		name = strings.Join(outer, ".") + "." + name
	}

	commentLines, commentRow := c.extractDocComment(node, sourceCode)
	startRow := node.StartPoint().Row
	if len(commentLines) > 0 {
		startRow = commentRow
	}

	decl := &hierarchy.Declaration{
		ID:        hierarchy.QualifiedID(namespace, name),
		Name:      name,
		Namespace: namespace,
		Kind:      kind,
		Parents:   baseList(node, sourceCode),
		Position: hierarchy.Position{
			Filepath:  filepath,
			StartLine: int(startRow + 1),
			EndLine:   int(node.EndPoint().Row + 1),
		},
	}

	if comment := docblock.Parse(commentLines); comment != nil {
		decl.Doc = comment.Block
		decl.Inherit = comment.Inherit
	}
	return decl
}

// extractDocComment collects the run of "///" comments directly above node and
// the row the run starts on, so that a declaration's range covers its documentation.
func (c *CSharpExtractor) extractDocComment(node *sitter.Node, sourceCode []byte) ([]string, uint32) {
	var commentLines []string
	startRow := node.StartPoint().Row
	currentNode := node
	for {
		prevSibling := currentNode.PrevSibling()
		if prevSibling == nil || (currentNode.StartPoint().Row-prevSibling.EndPoint().Row > 1) {
			break
		}
		if prevSibling.Type() != "comment" {
			break
		}
		text := prevSibling.Content(sourceCode)
		if !strings.HasPrefix(strings.TrimSpace(text), "///") {
			break
		}
		commentLines = append([]string{text}, commentLines...)
		startRow = prevSibling.StartPoint().Row
		currentNode = prevSibling
	}
	return commentLines, startRow
}

func declName(node *sitter.Node, sourceCode []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Content(sourceCode)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "identifier" {
			return child.Content(sourceCode)
		}
	}
	return ""
}

// baseList returns the parents named after ':' in declaration order.
func baseList(node *sitter.Node, sourceCode []byte) []string {
	var list *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "base_list" {
			list = child
			break
		}
	}
	if list == nil {
		return nil
	}

	var parents []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		switch child.Type() {
		case "argument_list", "comment":
			continue
		case "primary_constructor_base_type":
			if child.NamedChildCount() > 0 {
				child = child.NamedChild(0)
			}
		}
		if ref := strings.TrimSpace(child.Content(sourceCode)); ref != "" {
			parents = append(parents, ref)
		}
	}
	return parents
}

// enclosingScope walks up from node and returns its namespace and the names
// of the types it is nested in, outermost first.
func enclosingScope(node *sitter.Node, sourceCode []byte) (string, []string) {
	var namespaces, outer []string
	top := node
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "namespace_declaration", "file_scoped_namespace_declaration":
			if n := p.ChildByFieldName("name"); n != nil {
				namespaces = append([]string{n.Content(sourceCode)}, namespaces...)
			}
		default:
			if _, ok := csharpKinds[p.Type()]; ok {
				if name := declName(p, sourceCode); name != "" {
					outer = append([]string{name}, outer...)
				}
			}
		}
		if p.Parent() != nil {
			top = p
		}
	}

	// Older grammars place declarations after a file-scoped namespace as its siblings.
	for s := top.PrevSibling(); s != nil; s = s.PrevSibling() {
		if s.Type() == "file_scoped_namespace_declaration" {
			if n := s.ChildByFieldName("name"); n != nil {
				namespaces = append([]string{n.Content(sourceCode)}, namespaces...)
			}
			break
		}
	}

	return strings.Join(namespaces, "."), outer
}
