// Package store provides storage backends for PlayaBooth.
//
// This file implements an SQLite-backed session store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
	// DefaultBusyTimeoutMS is how long a writer waits on a locked database
	DefaultBusyTimeoutMS = 5000
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists sessions in a single SQLite file in WAL mode.
type SQLiteStore struct {
	*sqlRepo
	path string
}

// NewSQLiteStore creates a new SQLite store with the given DSN and initializes the schema.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(ctx context.Context, opts ...Option) (*SQLiteStore, error) {
	cfg := applyOpts(opts)
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	path := sqlitePath(cfg.DSN)
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
			slog.Error("Failed to create database directory", "error", err, "dir", dir)
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		slog.Debug("SQLite database directory verified/created", "dir", dir)
	}

	db, err := sql.Open("sqlite3", sqliteDSN(cfg.DSN))
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}
	slog.Debug("SQLite ping successful", "path", path)

	s := &SQLiteStore{
		sqlRepo: &sqlRepo{
			db:        db,
			name:      "SQLiteStore",
			bind:      func(q string) string { return q },
			processID: cfg.ProcessID,
			now:       cfg.Now,
		},
		path: path,
	}
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("SQLiteStore opened", "path", path, "process_id", cfg.ProcessID)
	return s, nil
}

// Init creates the schema if it does not exist. It is safe to call repeatedly.
func (s *SQLiteStore) Init(ctx context.Context) error {
	slog.Debug("Running SQLite migrations")
	if _, err := s.db.ExecContext(ctx, sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// sqlitePath strips the file: scheme and query parameters from a DSN.
func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	return path
}

// sqliteDSN adds WAL journaling, foreign key enforcement and a busy timeout
// unless the DSN already sets them.
func sqliteDSN(dsn string) string {
	params := []string{}
	if !strings.Contains(dsn, "_journal_mode=") {
		params = append(params, "_journal_mode=WAL")
	}
	if !strings.Contains(dsn, "_foreign_keys=") {
		params = append(params, "_foreign_keys=on")
	}
	if !strings.Contains(dsn, "_busy_timeout=") {
		params = append(params, fmt.Sprintf("_busy_timeout=%d", DefaultBusyTimeoutMS))
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
