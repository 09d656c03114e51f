package index

import (
	"encoding/json"
	"fmt"
	"os"

	"inheritdoc/internal/crawler"
	"inheritdoc/internal/hierarchy"
	"inheritdoc/internal/manifest"
)

// Indexer orchestrates declaration collection and registry construction.
type Indexer struct {
	crawler *crawler.Crawler
}

// NewIndexer creates a new indexer.
func NewIndexer(c *crawler.Crawler) *Indexer {
	return &Indexer{
		crawler: c,
	}
}

// Result is a built registry and how it was obtained.
type Result struct {
	Registry *hierarchy.Registry
	Scan     crawler.ScanStats
}

// BuildRegistry scans the project root and, when manifestPath is set, merges
// the manifest's declarations in before linking.
func (i *Indexer) BuildRegistry(root, manifestPath string) (*Result, error) {
	b := hierarchy.NewBuilder()

	var addErr error
	stats, err := i.crawler.ScanProject(root, func(d hierarchy.Declaration) {
		if err := b.Add(d); err != nil && addErr == nil {
			addErr = err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if addErr != nil {
		return nil, addErr
	}

	if manifestPath != "" {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, err
		}
		for _, d := range m.Declarations() {
			if err := b.Add(d); err != nil {
				return nil, err
			}
		}
	}

	// Resolve references after all declarations are loaded
	return &Result{Registry: b.Build(), Scan: stats}, nil
}

// SaveSnapshot writes the registry's declarations to a JSON file.
func SaveSnapshot(reg *hierarchy.Registry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(reg.Declarations()); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot rebuilds a registry from a JSON snapshot.
func LoadSnapshot(path string) (*hierarchy.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	var decls []hierarchy.Declaration
	if err := json.NewDecoder(f).Decode(&decls); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	b := hierarchy.NewBuilder()
	for _, d := range decls {
		if err := b.Add(d); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
