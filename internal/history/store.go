package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the history database after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by an incompatible
// version of the tool.
var ErrSchemaMismatch = errors.New("history schema version mismatch")

// ErrLocked indicates another process holds the history database.
var ErrLocked = errors.New("history database is locked by another process")

// Run is one recorded export invocation.
type Run struct {
	ID         int64
	SourcePath string
	Preset     string
	CreatedAt  time.Time
}

// Result is one platform's outcome within a run.
type Result struct {
	ID         int64
	RunID      int64
	Platform   string
	OutputPath string
	Bytes      int64
	Attempts   int
	Success    bool
	Message    string
}

// RunSummary is a run joined with its per-platform tallies, for listings.
type RunSummary struct {
	Run
	Platforms int
	Succeeded int
}

// Store persists export history backed by SQLite. A file lock next to the
// database keeps concurrent invocations from interleaving writes.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open initializes or connects to the history database at path and applies
// the schema. The caller must Close the store to release the file lock.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database and releases the file lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'gifsmith history clear' or delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// RecordRun stores one export invocation with its per-platform results
// atomically and returns the new run id.
func (s *Store) RecordRun(ctx context.Context, run Run, results []Result) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO export_runs (source_path, preset, created_at) VALUES (?, ?, ?)",
		run.SourcePath, run.Preset, createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for _, result := range results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO export_results (run_id, platform, output_path, bytes, attempts, success, message)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID,
			result.Platform,
			nullableString(result.OutputPath),
			result.Bytes,
			result.Attempts,
			boolToInt(result.Success),
			nullableString(result.Message),
		); err != nil {
			return 0, fmt.Errorf("insert result for %s: %w", result.Platform, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs with per-platform tallies, newest
// first. A non-positive limit returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT r.id, r.source_path, r.preset, r.created_at,
            COUNT(e.id), COALESCE(SUM(e.success), 0)
        FROM export_runs r
        LEFT JOIN export_results e ON e.run_id = r.id
        GROUP BY r.id
        ORDER BY r.id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			summary   RunSummary
			createdAt string
		)
		if err := rows.Scan(&summary.ID, &summary.SourcePath, &summary.Preset, &createdAt,
			&summary.Platforms, &summary.Succeeded); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summary.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", createdAt, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// ListResults returns the per-platform results for one run in insertion
// order.
func (s *Store) ListResults(ctx context.Context, runID int64) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, platform, output_path, bytes, attempts, success, message
         FROM export_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			result     Result
			outputPath sql.NullString
			message    sql.NullString
			success    int
		)
		if err := rows.Scan(&result.ID, &result.RunID, &result.Platform, &outputPath,
			&result.Bytes, &result.Attempts, &success, &message); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		result.OutputPath = outputPath.String
		result.Message = message.String
		result.Success = success != 0
		results = append(results, result)
	}
	return results, rows.Err()
}

// Clear removes every recorded run and result.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM export_runs"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
