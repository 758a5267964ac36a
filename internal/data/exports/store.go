// Package exports persists a snapshot of one compilation (modules, edges
// and export tables) to SQLite for tooling. The compiler only writes it.
package exports

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	coreerrors "modgraph/internal/core/errors"
	"modgraph/internal/engine/graph"
	"modgraph/internal/engine/symbols"
)

const driverName = "sqlite"

type Run struct {
	ID          string
	Project     string
	Timestamp   time.Time
	ModuleCount int
	EdgeCount   int
}

// Export is one row of a module's export table.
type Export struct {
	Module     string
	Name       string
	Kind       string
	Visibility string
	Type       string
	DefinedIn  string
	File       string
	Line       int
	Docs       string
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
	now  func() time.Time
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, coreerrors.New(coreerrors.CodeValidationError, "export index path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, coreerrors.AddContext(
			coreerrors.New(coreerrors.CodeValidationError, "export index path is a directory, expected file"),
			coreerrors.CtxPath, cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "create export index directory")
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "open sqlite export index")
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "ping sqlite export index")
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "initialize export index schema")
	}

	return &Store{path: cleanPath, db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordGraph writes every module of g with its edges and export table under
// a fresh run id and returns that id. The whole run is one transaction.
func (s *Store) RecordGraph(ctx context.Context, project string, g *graph.ModuleGraph) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project = strings.TrimSpace(project)
	if project == "" {
		project = "default"
	}
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", coreerrors.Wrap(err, coreerrors.CodeIO, "begin export run")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, project, ts_utc, module_count, edge_count) VALUES (?, ?, ?, ?, ?)`,
		runID, project, s.now().Format(time.RFC3339Nano), g.Len(), g.EdgeCount(),
	); err != nil {
		return "", coreerrors.Wrap(err, coreerrors.CodeIO, "insert export run")
	}

	modStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO modules (run_id, module_id, path, name, file_path, compiled) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", coreerrors.Wrap(err, coreerrors.CodeIO, "prepare module insert")
	}
	defer modStmt.Close()

	edgeStmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (run_id, from_id, to_id) VALUES (?, ?, ?)`)
	if err != nil {
		return "", coreerrors.Wrap(err, coreerrors.CodeIO, "prepare edge insert")
	}
	defer edgeStmt.Close()

	exportStmt, err := tx.PrepareContext(ctx, `INSERT INTO exports (
  run_id, module_id, name, kind, visibility, type_hint, defined_in, file_path, line_number, docs
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", coreerrors.Wrap(err, coreerrors.CodeIO, "prepare export insert")
	}
	defer exportStmt.Close()

	for _, mod := range g.Modules() {
		if _, err := modStmt.ExecContext(ctx, runID, int64(mod.ID), mod.PathString(), mod.Name, mod.FilePath, mod.Compiled); err != nil {
			return "", coreerrors.AddContext(
				coreerrors.Wrap(err, coreerrors.CodeIO, "insert module"), coreerrors.CtxModule, mod.PathString())
		}
		for _, dep := range g.Dependencies(mod.ID) {
			if _, err := edgeStmt.ExecContext(ctx, runID, int64(mod.ID), int64(dep)); err != nil {
				return "", coreerrors.Wrap(err, coreerrors.CodeIO, "insert edge")
			}
		}
		if mod.Exports == nil {
			continue
		}
		for _, sym := range mod.Exports.Exports() {
			row := exportRow(sym)
			if _, err := exportStmt.ExecContext(ctx, runID, int64(mod.ID),
				row.Name, row.Kind, row.Visibility, row.Type, row.DefinedIn, row.File, row.Line, row.Docs,
			); err != nil {
				return "", coreerrors.AddContext(
					coreerrors.Wrap(err, coreerrors.CodeIO, "insert export"), coreerrors.CtxSymbol, sym.Name)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", coreerrors.Wrap(err, coreerrors.CodeIO, "commit export run")
	}
	return runID, nil
}

// Runs lists the recorded runs of project, newest first.
func (s *Store) Runs(ctx context.Context, project string) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT run_id, project, ts_utc, module_count, edge_count
FROM runs WHERE project = ? ORDER BY ts_utc DESC, run_id`, project)
	if err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "query runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run   Run
			tsRaw string
		)
		if err := rows.Scan(&run.ID, &run.Project, &tsRaw, &run.ModuleCount, &run.EdgeCount); err != nil {
			return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "scan run")
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, coreerrors.Wrap(err, coreerrors.CodeParse, "parse run timestamp")
		}
		run.Timestamp = ts
		out = append(out, run)
	}
	return out, rows.Err()
}

// ExportsOf returns the export table of the module at modulePath in run,
// sorted by name. An unknown module yields a NOT_FOUND error.
func (s *Store) ExportsOf(ctx context.Context, runID, modulePath string) ([]Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var moduleID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT module_id FROM modules WHERE run_id = ? AND path = ?`, runID, modulePath).Scan(&moduleID)
	if err == sql.ErrNoRows {
		return nil, coreerrors.AddContext(
			coreerrors.New(coreerrors.CodeNotFound, "module not recorded in run"), coreerrors.CtxModule, modulePath)
	}
	if err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "query module")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, kind, visibility, type_hint, defined_in, file_path, line_number, docs
FROM exports WHERE run_id = ? AND module_id = ? ORDER BY name`, runID, moduleID)
	if err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "query exports")
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		e := Export{Module: modulePath}
		if err := rows.Scan(&e.Name, &e.Kind, &e.Visibility, &e.Type, &e.DefinedIn, &e.File, &e.Line, &e.Docs); err != nil {
			return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "scan export")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DependenciesOf returns the module paths modulePath depends on in run.
func (s *Store) DependenciesOf(ctx context.Context, runID, modulePath string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT dep.path
FROM edges e
JOIN modules src ON src.run_id = e.run_id AND src.module_id = e.from_id
JOIN modules dep ON dep.run_id = e.run_id AND dep.module_id = e.to_id
WHERE e.run_id = ? AND src.path = ?
ORDER BY dep.path`, runID, modulePath)
	if err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "query dependencies")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "scan dependency")
		}
		out = append(out, path)
	}
	return out, rows.Err()
}

func exportRow(sym symbols.Symbol) Export {
	e := Export{
		Name:       sym.Name,
		Kind:       symbols.KindName(sym.Kind),
		Visibility: sym.Visibility.String(),
		DefinedIn:  graph.JoinPath(sym.Module),
		File:       sym.Span.File,
		Line:       sym.Span.Line,
		Docs:       sym.Docs,
	}
	if sym.Type != nil {
		e.Type = sym.Type.String()
	}
	return e
}
