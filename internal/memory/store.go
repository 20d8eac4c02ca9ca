// Package memory is the persistent memory layer of Gravitas-Core.
//
// It keeps the task ledger, context snapshots, the canonical pointer,
// failure memory, and tool-usage history in a single project-scoped
// SQLite database. One store instance owns one database handle; writes
// are serialized through an internal mutex (single-writer discipline).
package memory

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// DBFileName is the fixed database file name inside the project root.
const DBFileName = ".gravitas_brain.db"

// ErrNotFound is returned when a referenced task or snapshot does not exist.
var ErrNotFound = errors.New("not found")

// Store is the SQLite-backed persistent memory. Single writer, project-scoped.
type Store struct {
	db   *sql.DB
	root string
	mu   sync.Mutex
}

// NewStore opens (or creates) the store for the given project root.
// Pass ":memory:" as the root for an ephemeral in-memory store in tests.
func NewStore(projectRoot string) (*Store, error) {
	var dbPath string
	if projectRoot == ":memory:" {
		dbPath = ":memory:"
	} else {
		abs, err := filepath.Abs(projectRoot)
		if err != nil {
			return nil, fmt.Errorf("resolve project root: %w", err)
		}
		projectRoot = abs
		dbPath = filepath.Join(abs, DBFileName)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, root: projectRoot}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// initSchema creates the database tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		parent_id TEXT,
		goal TEXT NOT NULL,
		state TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		completed_at TEXT,
		metadata TEXT,
		step_retry_count INTEGER NOT NULL DEFAULT 0,
		last_failure_reason TEXT,
		identical_failure_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS context_snapshots (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		project_map TEXT NOT NULL,
		safe_to_edit TEXT,
		do_not_touch TEXT,
		metadata TEXT,
		FOREIGN KEY (task_id) REFERENCES tasks(id)
	);

	-- Singleton: the last verified working state. Advanced only by an
	-- explicit set-canonical call, never derived from the latest snapshot.
	CREATE TABLE IF NOT EXISTS canonical_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		snapshot_id TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (snapshot_id) REFERENCES context_snapshots(id)
	);

	CREATE TABLE IF NOT EXISTS failures (
		id TEXT PRIMARY KEY,
		reason TEXT NOT NULL,
		context TEXT NOT NULL,
		created_at TEXT NOT NULL,
		task_id TEXT
	);

	CREATE TABLE IF NOT EXISTS tool_usage (
		id TEXT PRIMARY KEY,
		tool_name TEXT NOT NULL,
		arguments TEXT NOT NULL,
		outcome_summary TEXT NOT NULL,
		created_at TEXT NOT NULL,
		task_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_state ON tasks(state);
	CREATE INDEX IF NOT EXISTS idx_tasks_updated ON tasks(updated_at);
	CREATE INDEX IF NOT EXISTS idx_snapshots_task ON context_snapshots(task_id);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON context_snapshots(created_at);
	CREATE INDEX IF NOT EXISTS idx_failures_created ON failures(created_at);
	CREATE INDEX IF NOT EXISTS idx_failures_task ON failures(task_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// ProjectRoot returns the absolute project root this store is scoped to.
func (s *Store) ProjectRoot() string {
	return s.root
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
