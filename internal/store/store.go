// Package store persists fetched catalogue snapshots and statement history in
// a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

var (
	// ErrNoSnapshot indicates no snapshot of the requested kind has been saved.
	ErrNoSnapshot = errors.New("no snapshot stored")
	// ErrLocked indicates another process holds the store lock.
	ErrLocked = errors.New("store is locked by another process")
)

// CurrentVersion is the schema version written to the meta table.
// v2: history gained the code and row_count columns
const CurrentVersion = 2

// Store is the SQLite database handle.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create cache directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenWithRebuild opens the database, recreating it if it was written by an
// incompatible version. Returns (store, wasRebuilt, error).
func OpenWithRebuild(path string) (*Store, bool, error) {
	lock, err := AcquireLock(path + ".lock")
	if err != nil {
		return nil, false, err
	}
	defer lock.Release()

	if _, err := os.Stat(path); err == nil {
		db, err := sql.Open("sqlite", path)
		if err == nil {
			compatible := isSchemaCompatible(db)
			db.Close()
			if !compatible {
				if err := removeDatabaseFiles(path); err != nil {
					return nil, false, err
				}
				s, err := Open(path)
				return s, true, err
			}
		}
	}

	s, err := Open(path)
	return s, false, err
}

// OpenInMemory opens an in-memory database (for testing).
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every pooled connection would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: ":memory:"}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		-- One JSON snapshot per collection kind
		CREATE TABLE IF NOT EXISTS snapshots (
			kind TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL,    -- Unix timestamp (seconds)
			payload TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			statement TEXT NOT NULL,
			ran_at INTEGER NOT NULL,
			code TEXT NOT NULL DEFAULT '',  -- error code, empty on success
			row_count INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_history_ran_at ON history(ran_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, "failed to initialize database schema")
	}

	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		strconv.Itoa(CurrentVersion))
	if err != nil {
		return errors.Wrap(err, "failed to set database version")
	}
	return nil
}

func isSchemaCompatible(db *sql.DB) bool {
	var version string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&version)
	if err != nil {
		return false
	}
	return version == strconv.Itoa(CurrentVersion)
}

func removeDatabaseFiles(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

// Lock is an exclusive advisory lock on a file.
type Lock struct {
	file *os.File
}

// AcquireLock takes the lock at path without blocking. It returns ErrLocked
// when another process holds it.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create lock directory")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open lock file")
	}

	if err := lockFileExclusiveNonBlocking(file); err != nil {
		file.Close()
		if isWouldBlockError(err) {
			return nil, ErrLocked
		}
		return nil, errors.Wrap(err, "failed to acquire lock")
	}
	return &Lock{file: file}, nil
}

// Release unlocks and closes the lock file. It is safe on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
