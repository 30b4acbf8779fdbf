// Package store provides storage backends for PlayaBooth sessions and feedback.
//
// It includes SQLite and PostgreSQL stores, an in-memory store for tests and an
// unavailable store used when the configured backend cannot be opened.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BTreeMap/PlayaBooth/internal/models"
	"github.com/google/uuid"
)

// ErrNotLogged wraps every write failure. Losing a log entry never stops the booth.
var ErrNotLogged = errors.New("not logged")

// ErrUnknownSession is returned when feedback references a session the store does not hold.
var ErrUnknownSession = errors.New("unknown session")

// SessionStore persists generation sessions and the feedback attached to them.
type SessionStore interface {
	// LogSession appends a session and returns its store-assigned id.
	LogSession(ctx context.Context, style string, transcript models.Transcript, nicknames []models.Candidate, raw string) (int64, error)
	// LogFeedback appends feedback for a session previously returned by LogSession.
	LogFeedback(ctx context.Context, sessionID int64, fb models.Feedback) (int64, error)
	// Dump returns sessions with feedback left-joined in, ordered by session id.
	// A non-nil sessionID filters to that one session, or none if it does not exist.
	Dump(ctx context.Context, sessionID *int64) ([]models.SessionRecord, error)
	// ProcessID identifies this process in every session it writes.
	ProcessID() string
	Close() error
}

// Backend names as reported by DetectDSNType.
const (
	BackendSQLite   = "sqlite3"
	BackendPostgres = "postgres"
)

// Opts holds configuration options for stores.
type Opts struct {
	DSN       string
	ProcessID string
	Now       func() time.Time
}

// Option defines a functional option for configuring stores.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path or DSN.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithProcessID overrides the generated process id.
func WithProcessID(id string) Option {
	return func(o *Opts) {
		o.ProcessID = id
	}
}

// WithClock overrides the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) {
		o.Now = now
	}
}

func applyOpts(opts []Option) Opts {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ProcessID == "" {
		cfg.ProcessID = uuid.NewString()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}

// timestamp formats t as an ISO-8601 UTC string.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// DetectDSNType returns BackendPostgres for PostgreSQL URLs and keyword DSNs, BackendSQLite otherwise.
func DetectDSNType(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return BackendPostgres
	}
	if strings.Contains(lower, "host=") || strings.Contains(lower, "dbname=") || strings.Contains(lower, "user=") {
		return BackendPostgres
	}
	return BackendSQLite
}

// Open creates the store matching the DSN type and initializes its schema.
func Open(ctx context.Context, dsn string, opts ...Option) (SessionStore, error) {
	if DetectDSNType(dsn) == BackendPostgres {
		s, err := NewPostgresStore(ctx, append(opts, WithPostgresDSN(dsn))...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := NewSQLiteStore(ctx, append(opts, WithSQLiteDSN(dsn))...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// notLogged wraps err so callers can match ErrNotLogged.
func notLogged(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrNotLogged, op, err)
}
