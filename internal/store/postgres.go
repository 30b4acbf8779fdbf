// Package store provides storage backends for PlayaBooth.
//
// This file implements a PostgreSQL-backed session store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 4
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 2
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists sessions in PostgreSQL, with JSONB columns for structured data.
type PostgresStore struct {
	*sqlRepo
}

// NewPostgresStore creates a new Postgres store based on provided options and initializes the schema.
func NewPostgresStore(ctx context.Context, opts ...Option) (*PostgresStore, error) {
	cfg := applyOpts(opts)
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	slog.Debug("Postgres ping successful")

	s := &PostgresStore{
		sqlRepo: &sqlRepo{
			db:        db,
			name:      "PostgresStore",
			bind:      rebindDollar,
			processID: cfg.ProcessID,
			now:       cfg.Now,
		},
	}
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("PostgresStore opened", "process_id", cfg.ProcessID)
	return s, nil
}

// Init creates the schema if it does not exist. It is safe to call repeatedly.
func (s *PostgresStore) Init(ctx context.Context) error {
	slog.Debug("Running Postgres migrations")
	if _, err := s.db.ExecContext(ctx, postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return nil
}
