package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Scenarios(t *testing.T) {
	reg, err := Build(filepath.Join("testdata", "scenarios.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5, reg.Len())
	assert.Empty(t, reg.Unresolved)

	d1, ok := reg.Get("XmlDocumentComment.Derived1")
	require.True(t, ok)
	require.NotNil(t, d1.Inherit)
	assert.Empty(t, d1.Inherit.Cref)
	assert.Equal(t, "XmlDocumentComment.BaseClass", d1.BaseID)

	d3, _ := reg.Get("XmlDocumentComment.Derived3")
	require.NotNil(t, d3.Inherit)
	assert.Equal(t, "IBase", d3.Inherit.Cref)
	assert.Equal(t, []string{"XmlDocumentComment.IBase"}, d3.InterfaceIDs)

	base, _ := reg.Get("XmlDocumentComment.BaseClass")
	require.NotNil(t, base.Doc)
	assert.Equal(t, "This summary is BaseClass.", base.Doc.Raw)
}

func TestParse_InheritForms(t *testing.T) {
	m, err := Parse([]byte(`
types:
  - id: A
    inheritdoc: false
  - id: B
    inheritdoc: IBase
  - id: C
    kind: interface
`))
	require.NoError(t, err)

	decls := m.Declarations()
	require.Len(t, decls, 3)
	assert.Nil(t, decls[0].Inherit)
	require.NotNil(t, decls[1].Inherit)
	assert.Equal(t, "IBase", decls[1].Inherit.Cref)
	assert.Equal(t, "class", string(decls[0].Kind))
	assert.Equal(t, "interface", string(decls[2].Kind))
}

func TestParse_Validation(t *testing.T) {
	_, err := Parse([]byte("types:\n  - kind: class\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	_, err = Parse([]byte("types:\n  - id: X\n    kind: enum\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")

	_, err = Parse([]byte("types:\n  - id: X\n    inheritdoc: [a, b]\n"))
	assert.Error(t, err)
}

func TestDeclarations_QualifiedIDsKeepOneNamespace(t *testing.T) {
	m, err := Parse([]byte(`
namespace: Shop
types:
  - id: Shop.Order
  - id: Order.Line
  - id: Billing.Invoice
    namespace: Billing
`))
	require.NoError(t, err)

	decls := m.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "Order", decls[0].Name)
	assert.Equal(t, "Shop", decls[0].Namespace)
	assert.Equal(t, "Order.Line", decls[1].Name)
	assert.Equal(t, "Invoice", decls[2].Name)
	assert.Equal(t, "Billing", decls[2].Namespace)

	reg, err := buildFrom(decls)
	require.NoError(t, err)
	_, ok := reg.Get("Shop.Order")
	assert.True(t, ok)
	_, ok = reg.Get("Shop.Order.Line")
	assert.True(t, ok)
	_, ok = reg.Get("Billing.Invoice")
	assert.True(t, ok)
}
