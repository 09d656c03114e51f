package analysis

import (
	"testing"

	"inheritdoc/internal/git"
	"inheritdoc/internal/hierarchy"
	"inheritdoc/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decl(id string, kind hierarchy.Kind, file string, start, end int) hierarchy.Declaration {
	return hierarchy.Declaration{
		ID:       id,
		Kind:     kind,
		Position: hierarchy.Position{Filepath: file, StartLine: start, EndLine: end},
	}
}

func TestAnalyzer_AnalyzeImpact(t *testing.T) {
	base := decl("BaseClass", hierarchy.KindClass, "Base.cs", 1, 3)
	base.Doc = &hierarchy.DocumentationBlock{Summary: "base"}

	iface := decl("IBase", hierarchy.KindInterface, "Base.cs", 5, 6)
	iface.Doc = &hierarchy.DocumentationBlock{Summary: "iface"}

	d1 := decl("Derived1", hierarchy.KindClass, "Derived.cs", 1, 2)
	d1.Inherit = &hierarchy.InheritDirective{}
	d1.Base = "BaseClass"

	d2 := decl("Derived2", hierarchy.KindClass, "Derived.cs", 4, 5)
	d2.Inherit = &hierarchy.InheritDirective{}
	d2.Base = "BaseClass"
	d2.Interfaces = []string{"IBase"}

	d3 := decl("Derived3", hierarchy.KindClass, "Derived.cs", 7, 8)
	d3.Inherit = &hierarchy.InheritDirective{Cref: "IBase"}
	d3.Base = "BaseClass"
	d3.Interfaces = []string{"IBase"}

	grand := decl("GrandChild", hierarchy.KindClass, "Grand.cs", 1, 2)
	grand.Inherit = &hierarchy.InheritDirective{}
	grand.Base = "Derived1"

	documented := decl("Documented", hierarchy.KindClass, "Grand.cs", 4, 5)
	documented.Doc = &hierarchy.DocumentationBlock{Summary: "own"}
	documented.Base = "BaseClass"

	b := hierarchy.NewBuilder()
	for _, d := range []hierarchy.Declaration{base, iface, d1, d2, d3, grand, documented} {
		require.NoError(t, b.Add(d))
	}
	reg := b.Build()
	a := NewAnalyzer(reg, resolver.New(reg, resolver.Options{}))

	ids := func(nodes []*hierarchy.TypeNode) []string {
		var out []string
		for _, n := range nodes {
			out = append(out, n.ID)
		}
		return out
	}

	t.Run("Base class doc change", func(t *testing.T) {
		report := a.AnalyzeImpact([]git.ChangedFile{{Path: "Base.cs", ChangedLines: []int{1}}})
		assert.Equal(t, []string{"BaseClass"}, ids(report.DirectlyAffected))
		assert.Equal(t, []string{"Derived1", "Derived2", "GrandChild"}, ids(report.IndirectlyAffected))
	})

	t.Run("Interface doc change only reaches explicit references", func(t *testing.T) {
		report := a.AnalyzeImpact([]git.ChangedFile{{Path: "Base.cs", ChangedLines: []int{5}}})
		assert.Equal(t, []string{"IBase"}, ids(report.DirectlyAffected))
		assert.Equal(t, []string{"Derived3"}, ids(report.IndirectlyAffected))
	})

	t.Run("Unrelated lines", func(t *testing.T) {
		report := a.AnalyzeImpact([]git.ChangedFile{{Path: "Base.cs", ChangedLines: []int{4}}, {Path: "Other.cs", ChangedLines: []int{1}}})
		assert.Empty(t, report.DirectlyAffected)
		assert.Empty(t, report.IndirectlyAffected)
	})
}

func TestAnalyzer_RemovedBaseDocumentation(t *testing.T) {
	// BaseClass lost its summary; descendants now fall through or fail.
	base := decl("BaseClass", hierarchy.KindClass, "Base.cs", 1, 3)

	iface := decl("IBase", hierarchy.KindInterface, "IBase.cs", 1, 2)
	iface.Doc = &hierarchy.DocumentationBlock{Summary: "iface"}

	derived := decl("Derived", hierarchy.KindClass, "Derived.cs", 1, 2)
	derived.Inherit = &hierarchy.InheritDirective{}
	derived.Base = "BaseClass"
	derived.Interfaces = []string{"IBase"}

	lone := decl("Lone", hierarchy.KindClass, "Derived.cs", 4, 5)
	lone.Inherit = &hierarchy.InheritDirective{}
	lone.Base = "BaseClass"

	b := hierarchy.NewBuilder()
	for _, d := range []hierarchy.Declaration{base, iface, derived, lone} {
		require.NoError(t, b.Add(d))
	}
	reg := b.Build()
	a := NewAnalyzer(reg, resolver.New(reg, resolver.Options{}))

	report := a.AnalyzeImpact([]git.ChangedFile{{Path: "Base.cs", ChangedLines: []int{1}}})
	require.Len(t, report.DirectlyAffected, 1)
	assert.Equal(t, "BaseClass", report.DirectlyAffected[0].ID)

	var ids []string
	for _, n := range report.IndirectlyAffected {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"Derived", "Lone"}, ids)
}
