package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"inheritdoc/internal/hierarchy"
)

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	Extensions() []string
	ExtractDeclaration(node *sitter.Node, sourceCode []byte, filepath string) *hierarchy.Declaration
}
