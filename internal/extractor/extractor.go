package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"inheritdoc/internal/hierarchy"
)

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch strings.ToLower(lang) {
	case "csharp", "cs", "c#":
		langExt = &CSharpExtractor{}
		lang = "csharp"
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

// Language returns the canonical language name.
func (e *Extractor) Language() string {
	return e.langName
}

// Extensions lists the file extensions the extractor understands.
func (e *Extractor) Extensions() []string {
	return e.langExtractor.Extensions()
}

// ExtractFromFile parses a single source file and extracts all type declarations.
func (e *Extractor) ExtractFromFile(filepath string) ([]hierarchy.Declaration, error) {
	sourceCode, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return e.ExtractFromSource(sourceCode, filepath)
}

// ExtractFromSource extracts type declarations from in-memory source.
func (e *Extractor) ExtractFromSource(sourceCode []byte, filepath string) ([]hierarchy.Declaration, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filepath, err)
	}
	defer tree.Close()

	query, err := sitter.NewQuery([]byte(e.langExtractor.GetQuery()), e.langExtractor.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var decls []hierarchy.Declaration
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			decl := e.langExtractor.ExtractDeclaration(c.Node, sourceCode, filepath)
			if decl != nil {
				decls = append(decls, *decl)
			}
		}
	}

	return decls, nil
}
