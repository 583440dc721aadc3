package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	pragmaJournalModeWAL = `PRAGMA journal_mode=WAL`
	pragmaForeignKeysOn  = `PRAGMA foreign_keys=ON`
	pragmaBusyTimeout    = `PRAGMA busy_timeout=5000`
)

// Repos is the set of entity repositories. Store embeds one bound to the
// long-lived connection; InTx hands out copies bound to a transaction.
type Repos struct {
	Users       UserRepository
	Preferences PreferenceRepository
	Navigation  NavigationRepository
	Themes      ThemeRepository
}

func newRepos(db DBTX) Repos {
	return Repos{
		Users:       &userRepository{db: db},
		Preferences: &preferenceRepository{db: db},
		Navigation:  &navigationRepository{db: db},
		Themes:      &themeRepository{db: db},
	}
}

// Store owns the single connection to the profile database for the process
// lifetime. Opening is idempotent: the file, schema and indexes are created
// if absent.
type Store struct {
	db   *sql.DB
	path string

	Repos
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInit)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: create parent dir: %w", ErrInit, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	// Single-user desktop workload: one shared connection, the engine
	// serializes disk access internally.
	db.SetMaxOpenConns(1)

	if err := configureSQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	if err := RunMigrations(db, DefaultMigrations()); err != nil {
		_ = db.Close()
		if errors.Is(err, ErrSchemaTooNew) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	if err := ensureDBPermissions(path); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	return &Store{
		db:    db,
		path:  path,
		Repos: newRepos(db),
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// InTx runs fn against transaction-bound repositories and commits when fn
// returns nil. Any error rolls the whole transaction back.
func (s *Store) InTx(ctx context.Context, fn func(r Repos) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("in tx: store is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return writeErr("begin tx", err)
	}

	if err := fn(newRepos(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return writeErr("commit tx", err)
	}
	return nil
}

func configureSQLite(db *sql.DB) error {
	pragmas := []string{pragmaJournalModeWAL, pragmaForeignKeysOn, pragmaBusyTimeout}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("configure sqlite %q: %w", stmt, err)
		}
	}
	return nil
}

func ensureDBPermissions(path string) error {
	if err := os.Chmod(path, 0o600); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("set db file permissions: %w", err)
		}
	}

	walPath := path + "-wal"
	if err := os.Chmod(walPath, 0o600); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("set wal file permissions: %w", err)
		}
	}
	return nil
}
