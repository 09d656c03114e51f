package crawler

import (
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"inheritdoc/internal/extractor"
	"inheritdoc/internal/hierarchy"
)

// Crawler scans a directory for source files.
type Crawler struct {
	extractor *extractor.Extractor
	ignored   []string
	include   []string
	exclude   []string
}

// ScanStats counts what a scan visited.
type ScanStats struct {
	Files   int
	Failed  []string
	Decls   int
	Skipped int
}

// NewCrawler creates a new crawler instance. Include and exclude are doublestar
// patterns matched against slash-separated paths relative to the scan root.
func NewCrawler(ext *extractor.Extractor, include, exclude []string) *Crawler {
	if len(include) == 0 {
		for _, e := range ext.Extensions() {
			include = append(include, "**/*"+e)
		}
	}
	return &Crawler{
		extractor: ext,
		ignored:   []string{".git", "bin", "obj", "node_modules", ".vs"},
		include:   include,
		exclude:   exclude,
	}
}

// ScanProject walks the root directory and processes all relevant files.
// It uses a callback to stream declarations, preventing large memory buildup.
func (c *Crawler) ScanProject(root string, onDecl func(hierarchy.Declaration)) (ScanStats, error) {
	var stats ScanStats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if rel == "." && !d.IsDir() {
			rel = d.Name()
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !c.matches(rel) {
			stats.Skipped++
			return nil
		}

		decls, err := c.extractor.ExtractFromFile(path)
		if err != nil {
			// Log and continue instead of failing the whole scan
			stats.Failed = append(stats.Failed, path)
			return nil
		}

		stats.Files++
		for _, decl := range decls {
			decl.Position.Filepath = rel
			stats.Decls++
			onDecl(decl)
		}

		return nil
	})
	return stats, err
}

func (c *Crawler) matches(rel string) bool {
	for _, pattern := range c.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	for _, pattern := range c.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
