// Package sqlite persists session tokens in a SQLite database so a token
// survives process restarts. Tokens expire after a fixed lifetime, matching
// the one-day cookie the browser build uses.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/openjub/pkg/jubsdk"
	_ "modernc.org/sqlite"
)

// DefaultTTL is how long a saved token stays loadable.
const DefaultTTL = 24 * time.Hour

var _ jubsdk.TokenStore = (*Store)(nil)

type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

type Option func(*Store)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now. Useful for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens the database at dsn and applies pending migrations.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load returns the unexpired token saved for server, or "".
func (s *Store) Load(ctx context.Context, server string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM session_tokens WHERE server = ? AND expires_at > ?`,
		server, s.now().UnixMilli(),
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

// Save stores token for server and restarts its lifetime.
func (s *Store) Save(ctx context.Context, server, token string) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_tokens (server, token, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (server) DO UPDATE SET
			token      = excluded.token,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		server, token, now.UnixMilli(), now.Add(s.ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, server string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE server = ?`, server); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// DeleteExpired removes every expired token and reports how many went.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM session_tokens WHERE expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return res.RowsAffected()
}
