package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"inheritdoc/internal/hierarchy"
	"inheritdoc/internal/resolver"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a declaration is not stored.
var ErrNotFound = errors.New("declaration not found")

const (
	roleParent    = "parent"
	roleInterface = "interface"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS types (
			id TEXT PRIMARY KEY,
			name TEXT,
			namespace TEXT,
			kind TEXT,
			filepath TEXT,
			start_line INTEGER,
			end_line INTEGER,
			doc JSON,
			has_inherit INTEGER,
			inherit_cref TEXT,
			base TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS parents (
			type_id TEXT,
			role TEXT,
			ordinal INTEGER,
			ref TEXT,
			PRIMARY KEY (type_id, role, ordinal)
		);`,
		`CREATE TABLE IF NOT EXISTS resolutions (
			type_id TEXT PRIMARY KEY,
			ref TEXT,
			source_id TEXT,
			via TEXT,
			error TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_types_file ON types(filepath);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- DeclarationStore Implementation ---

func (s *SQLiteStore) SaveDeclarations(ctx context.Context, decls []hierarchy.Declaration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The stored snapshot mirrors the latest scan exactly.
	for _, q := range []string{"DELETE FROM parents", "DELETE FROM types"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO types (id, name, namespace, kind, filepath, start_line, end_line, doc, has_inherit, inherit_cref, base)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	parentStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO parents (type_id, role, ordinal, ref) VALUES (?, ?, ?, ?)
		ON CONFLICT(type_id, role, ordinal) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer parentStmt.Close()

	for _, d := range decls {
		var doc []byte
		if d.Doc != nil {
			if doc, err = json.Marshal(d.Doc); err != nil {
				return fmt.Errorf("failed to encode doc of %s: %w", d.ID, err)
			}
		}
		hasInherit, cref := 0, ""
		if d.Inherit != nil {
			hasInherit, cref = 1, d.Inherit.Cref
		}

		if _, err := stmt.ExecContext(ctx, d.ID, d.Name, d.Namespace, string(d.Kind), d.Position.Filepath,
			d.Position.StartLine, d.Position.EndLine, doc, hasInherit, cref, d.Base); err != nil {
			return fmt.Errorf("failed to save %s: %w", d.ID, err)
		}
		for i, ref := range d.Parents {
			if _, err := parentStmt.ExecContext(ctx, d.ID, roleParent, i, ref); err != nil {
				return err
			}
		}
		for i, ref := range d.Interfaces {
			if _, err := parentStmt.ExecContext(ctx, d.ID, roleInterface, i, ref); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

const selectTypes = `SELECT id, name, namespace, kind, filepath, start_line, end_line, doc, has_inherit, inherit_cref, base FROM types`

func (s *SQLiteStore) LoadDeclarations(ctx context.Context) ([]hierarchy.Declaration, error) {
	rows, err := s.db.QueryContext(ctx, selectTypes+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query types: %w", err)
	}
	decls, err := scanDeclarations(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachParents(ctx, decls); err != nil {
		return nil, err
	}
	return decls, nil
}

// LoadRegistry rebuilds a linked registry from the stored snapshot.
func (s *SQLiteStore) LoadRegistry(ctx context.Context) (*hierarchy.Registry, error) {
	decls, err := s.LoadDeclarations(ctx)
	if err != nil {
		return nil, err
	}
	b := hierarchy.NewBuilder()
	for _, d := range decls {
		if err := b.Add(d); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

func (s *SQLiteStore) GetDeclaration(ctx context.Context, id string) (*hierarchy.Declaration, error) {
	rows, err := s.db.QueryContext(ctx, selectTypes+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	decls, err := scanDeclarations(rows)
	if err != nil {
		return nil, err
	}
	if len(decls) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.attachParents(ctx, decls); err != nil {
		return nil, err
	}
	return &decls[0], nil
}

func (s *SQLiteStore) FindByFile(ctx context.Context, filepath string) ([]hierarchy.Declaration, error) {
	rows, err := s.db.QueryContext(ctx, selectTypes+" WHERE filepath = ? ORDER BY start_line", filepath)
	if err != nil {
		return nil, err
	}
	decls, err := scanDeclarations(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachParents(ctx, decls); err != nil {
		return nil, err
	}
	return decls, nil
}

func scanDeclarations(rows *sql.Rows) ([]hierarchy.Declaration, error) {
	defer rows.Close()

	var decls []hierarchy.Declaration
	for rows.Next() {
		var d hierarchy.Declaration
		var kind string
		var doc []byte
		var hasInherit int
		var cref string
		if err := rows.Scan(&d.ID, &d.Name, &d.Namespace, &kind, &d.Position.Filepath, &d.Position.StartLine,
			&d.Position.EndLine, &doc, &hasInherit, &cref, &d.Base); err != nil {
			return nil, fmt.Errorf("failed to scan type: %w", err)
		}
		d.Kind = hierarchy.Kind(kind)
		if len(doc) > 0 {
			d.Doc = &hierarchy.DocumentationBlock{}
			if err := json.Unmarshal(doc, d.Doc); err != nil {
				return nil, fmt.Errorf("failed to decode doc of %s: %w", d.ID, err)
			}
		}
		if hasInherit != 0 {
			d.Inherit = &hierarchy.InheritDirective{Cref: cref}
		}
		decls = append(decls, d)
	}
	return decls, rows.Err()
}

func (s *SQLiteStore) attachParents(ctx context.Context, decls []hierarchy.Declaration) error {
	if len(decls) == 0 {
		return nil
	}
	byID := make(map[string]int, len(decls))
	for i, d := range decls {
		byID[d.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, "SELECT type_id, role, ref FROM parents ORDER BY type_id, role, ordinal")
	if err != nil {
		return fmt.Errorf("failed to query parents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typeID, role, ref string
		if err := rows.Scan(&typeID, &role, &ref); err != nil {
			return fmt.Errorf("failed to scan parent: %w", err)
		}
		i, ok := byID[typeID]
		if !ok {
			continue
		}
		switch role {
		case roleParent:
			decls[i].Parents = append(decls[i].Parents, ref)
		case roleInterface:
			decls[i].Interfaces = append(decls[i].Interfaces, ref)
		}
	}
	return rows.Err()
}

// --- ReportStore Implementation ---

func (s *SQLiteStore) SaveReport(ctx context.Context, report *resolver.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM resolutions"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO resolutions (type_id, ref, source_id, via, error) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(type_id) DO UPDATE SET ref=excluded.ref, source_id=excluded.source_id, via=excluded.via, error=excluded.error
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range report.Items {
		var source, via string
		if it.Resolution != nil {
			source, via = it.Resolution.SourceID, string(it.Resolution.Via)
		}
		if _, err := stmt.ExecContext(ctx, it.Query.TypeID, it.Query.Ref, source, via, it.Error); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadReport(ctx context.Context) ([]ReportRow, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT type_id, ref, source_id, via, error FROM resolutions ORDER BY type_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var r ReportRow
		if err := rows.Scan(&r.TypeID, &r.Ref, &r.SourceID, &r.Via, &r.Error); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
