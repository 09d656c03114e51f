package extractor

import (
	"path/filepath"
	"testing"

	"inheritdoc/internal/hierarchy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byID(decls []hierarchy.Declaration) map[string]hierarchy.Declaration {
	out := make(map[string]hierarchy.Declaration, len(decls))
	for _, d := range decls {
		out[d.ID] = d
	}
	return out
}

func TestExtractor_ExtractFromFile(t *testing.T) {
	ext, err := NewExtractor("csharp")
	require.NoError(t, err)

	decls, err := ext.ExtractFromFile(filepath.Join("testdata", "Scenarios.cs"))
	require.NoError(t, err)

	got := byID(decls)

	t.Run("Overall Count", func(t *testing.T) {
		assert.Len(t, decls, 7, "BaseClass, IBase, Derived1-3, Plain, Plain.Inner")
	})

	t.Run("Documented declarations", func(t *testing.T) {
		d, ok := got["Samples.Docs.BaseClass"]
		require.True(t, ok)
		assert.Equal(t, hierarchy.KindClass, d.Kind)
		assert.Equal(t, "Samples.Docs", d.Namespace)
		require.NotNil(t, d.Doc)
		assert.Equal(t, "This summary is BaseClass.", d.Doc.Summary)
		assert.Nil(t, d.Inherit)

		i, ok := got["Samples.Docs.IBase"]
		require.True(t, ok)
		assert.Equal(t, hierarchy.KindInterface, i.Kind)
		assert.Equal(t, "This summary is IBase.", i.Doc.Text())
	})

	t.Run("Inherit directives", func(t *testing.T) {
		d1 := got["Samples.Docs.Derived1"]
		assert.Nil(t, d1.Doc)
		require.NotNil(t, d1.Inherit)
		assert.Empty(t, d1.Inherit.Cref)
		assert.Equal(t, []string{"BaseClass"}, d1.Parents)

		d3 := got["Samples.Docs.Derived3"]
		require.NotNil(t, d3.Inherit)
		assert.Equal(t, "IBase", d3.Inherit.Cref)
		assert.Equal(t, []string{"BaseClass", "IBase"}, d3.Parents)
		assert.Equal(t, 17, d3.Position.StartLine, "range starts at the doc comment")
		assert.Equal(t, 18, d3.Position.EndLine)
	})

	t.Run("Regular comments and nesting", func(t *testing.T) {
		p := got["Samples.Docs.Plain"]
		assert.Nil(t, p.Doc)
		assert.Nil(t, p.Inherit)

		inner, ok := got["Samples.Docs.Plain.Inner"]
		require.True(t, ok)
		assert.Equal(t, "Plain.Inner", inner.Name)
		assert.Equal(t, hierarchy.KindStruct, inner.Kind)
		assert.Equal(t, []string{"IComparable<Inner>"}, inner.Parents)
		assert.Equal(t, "Nested type.", inner.Doc.Text())
	})
}

func TestExtractor_Records(t *testing.T) {
	ext, err := NewExtractor("cs")
	require.NoError(t, err)

	decls, err := ext.ExtractFromFile(filepath.Join("testdata", "Records.cs"))
	require.NoError(t, err)
	got := byID(decls)

	entry, ok := got["Samples.Records.Entry"]
	require.True(t, ok)
	assert.Equal(t, hierarchy.KindRecord, entry.Kind)
	require.NotNil(t, entry.Inherit)
	assert.Equal(t, []string{"IAudited"}, entry.Parents)
}

func TestExtractor_UnsupportedLanguage(t *testing.T) {
	_, err := NewExtractor("cobol")
	assert.Error(t, err)
}

func TestExtractor_ScenariosResolveEndToEnd(t *testing.T) {
	ext, err := NewExtractor("csharp")
	require.NoError(t, err)
	decls, err := ext.ExtractFromFile(filepath.Join("testdata", "Scenarios.cs"))
	require.NoError(t, err)

	b := hierarchy.NewBuilder()
	for _, d := range decls {
		require.NoError(t, b.Add(d))
	}
	reg := b.Build()

	d2, ok := reg.Get("Samples.Docs.Derived2")
	require.True(t, ok)
	assert.Equal(t, "Samples.Docs.BaseClass", d2.BaseID)
	assert.Equal(t, []string{"Samples.Docs.IBase"}, d2.InterfaceIDs)
}
