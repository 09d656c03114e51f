package export

import (
	"strings"
	"testing"

	"inheritdoc/internal/hierarchy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMermaid(t *testing.T) {
	b := hierarchy.NewBuilder()
	require.NoError(t, b.Add(hierarchy.Declaration{Name: "BaseClass", Namespace: "Docs", Kind: hierarchy.KindClass, Doc: &hierarchy.DocumentationBlock{Summary: "base"}}))
	require.NoError(t, b.Add(hierarchy.Declaration{Name: "IBase", Namespace: "Docs", Kind: hierarchy.KindInterface, Doc: &hierarchy.DocumentationBlock{Summary: "iface"}}))
	require.NoError(t, b.Add(hierarchy.Declaration{Name: "Derived3", Namespace: "Docs", Kind: hierarchy.KindClass,
		Inherit: &hierarchy.InheritDirective{Cref: "IBase"}, Parents: []string{"BaseClass", "IBase"}}))

	out := Mermaid(b.Build())

	assert.True(t, strings.HasPrefix(out, "```mermaid\nclassDiagram\n"))
	assert.Contains(t, out, "    class Docs_IBase[\"Docs.IBase\"] {\n        <<interface>>\n        <<documented>>\n    }\n")
	assert.Contains(t, out, "<<inheritdoc IBase>>")
	assert.Contains(t, out, "    Docs_BaseClass <|-- Docs_Derived3\n")
	assert.Contains(t, out, "    Docs_IBase <|.. Docs_Derived3\n")
}

func TestMermaid_DistinctIdentifiers(t *testing.T) {
	b := hierarchy.NewBuilder()
	require.NoError(t, b.Add(hierarchy.Declaration{ID: "A.B", Name: "B", Namespace: "A", Kind: hierarchy.KindClass}))
	require.NoError(t, b.Add(hierarchy.Declaration{ID: "A_B", Name: "A_B", Kind: hierarchy.KindClass, Base: "A.B"}))

	out := Mermaid(b.Build())

	assert.Contains(t, out, "    class A_B[\"A.B\"] {\n")
	assert.Contains(t, out, "    class A_B_2[\"A_B\"] {\n")
	assert.Contains(t, out, "    A_B <|-- A_B_2\n")
}
