package analysis

import (
	"sort"

	"inheritdoc/internal/git"
	"inheritdoc/internal/hierarchy"
	"inheritdoc/internal/resolver"
)

// ImpactReport summarizes the declarations affected by changes.
type ImpactReport struct {
	// DirectlyAffected declarations overlap a changed line.
	DirectlyAffected []*hierarchy.TypeNode
	// IndirectlyAffected declarations inherit documentation whose search
	// enters a directly affected declaration.
	IndirectlyAffected []*hierarchy.TypeNode
}

// Analyzer performs impact analysis on the type hierarchy.
type Analyzer struct {
	reg      *hierarchy.Registry
	resolver *resolver.InheritanceResolver
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(reg *hierarchy.Registry, r *resolver.InheritanceResolver) *Analyzer {
	return &Analyzer{reg: reg, resolver: r}
}

// AnalyzeImpact identifies which declarations, and whose inherited
// documentation, are affected by the given changes.
func (a *Analyzer) AnalyzeImpact(changes []git.ChangedFile) *ImpactReport {
	report := &ImpactReport{
		DirectlyAffected:   []*hierarchy.TypeNode{},
		IndirectlyAffected: []*hierarchy.TypeNode{},
	}

	byFile := make(map[string][]*hierarchy.TypeNode)
	for _, n := range a.reg.Nodes() {
		byFile[n.Position.Filepath] = append(byFile[n.Position.Filepath], n)
	}

	// 1. Find Direct Impacts
	direct := make(map[string]bool)
	for _, change := range changes {
		for _, n := range byFile[change.Path] {
			if !direct[n.ID] && isAffected(n, change.ChangedLines) {
				direct[n.ID] = true
				report.DirectlyAffected = append(report.DirectlyAffected, n)
			}
		}
	}

	// 2. Collect every descendant of a directly affected declaration
	candidates := make(map[string]*hierarchy.TypeNode)
	queue := append([]*hierarchy.TypeNode(nil), report.DirectlyAffected...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, dep := range a.reg.Dependents(n.ID) {
			if _, seen := candidates[dep.ID]; seen || direct[dep.ID] {
				continue
			}
			candidates[dep.ID] = dep
			queue = append(queue, dep)
		}
	}

	// 3. Keep the descendants whose search enters a changed declaration,
	// including searches that came back empty
	for _, dep := range candidates {
		if dep.Inherit == nil {
			continue
		}
		_, visited, _ := a.resolver.Trace(resolver.QueryFor(dep))
		if len(visited) == 0 {
			continue
		}
		for _, id := range visited[1:] {
			if direct[id] {
				report.IndirectlyAffected = append(report.IndirectlyAffected, dep)
				break
			}
		}
	}
	sort.Slice(report.IndirectlyAffected, func(i, j int) bool {
		return report.IndirectlyAffected[i].ID < report.IndirectlyAffected[j].ID
	})

	return report
}

func isAffected(n *hierarchy.TypeNode, lines []int) bool {
	// Simple overlap check
	for _, line := range lines {
		if line >= n.Position.StartLine && line <= n.Position.EndLine {
			return true
		}
	}
	return false
}
