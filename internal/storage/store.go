package storage

import (
	"context"

	"inheritdoc/internal/hierarchy"
	"inheritdoc/internal/resolver"
)

// Store combines declaration and resolution-report storage.
type Store interface {
	DeclarationStore
	ReportStore
	Close() error
}

// DeclarationStore persists the declarations a registry is built from.
type DeclarationStore interface {
	// SaveDeclarations replaces the stored snapshot with decls.
	SaveDeclarations(ctx context.Context, decls []hierarchy.Declaration) error

	// LoadDeclarations returns the stored snapshot ordered by ID.
	LoadDeclarations(ctx context.Context) ([]hierarchy.Declaration, error)

	// GetDeclaration retrieves one declaration by its ID.
	GetDeclaration(ctx context.Context, id string) (*hierarchy.Declaration, error)

	// FindByFile retrieves all declarations found in a specific file.
	FindByFile(ctx context.Context, filepath string) ([]hierarchy.Declaration, error)
}

// ReportStore keeps the outcome of the latest batch resolution.
type ReportStore interface {
	SaveReport(ctx context.Context, report *resolver.Report) error
	LoadReport(ctx context.Context) ([]ReportRow, error)
}

// ReportRow is one persisted batch outcome.
type ReportRow struct {
	TypeID   string
	Ref      string
	SourceID string
	Via      string
	Error    string
}
