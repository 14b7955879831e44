// Package postgres implements repository.Store on PostgreSQL through pgx.
//
// PostgreSQL already speaks the SQLSTATE vocabulary the error normalizer
// understands, so driver errors pass through with their native codes.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a pgx connection pool and implements repository.Store.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and brings the schema up to date.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing database URL: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}
	return db, nil
}

// Close releases every pooled connection.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id              TEXT PRIMARY KEY,
			email           TEXT NOT NULL,
			password_hash   TEXT NOT NULL DEFAULT '',
			confirmed_at    TIMESTAMPTZ,
			last_sign_in_at TIMESTAMPTZ,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_key ON accounts (lower(email));

		CREATE TABLE IF NOT EXISTS identities (
			provider   TEXT NOT NULL,
			subject    TEXT NOT NULL,
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (provider, subject)
		);

		CREATE TABLE IF NOT EXISTS auth_codes (
			code       TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS profiles (
			id         TEXT PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
			username   TEXT UNIQUE,
			full_name  TEXT,
			avatar_url TEXT,
			bio        TEXT,
			website    TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS posts (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL CHECK (char_length(btrim(title)) BETWEEN 1 AND 200),
			content     TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT 'general'
			            CHECK (category IN ('tech', 'daily', 'general')),
			author_id   TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			author_name TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_posts_category ON posts (category, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts (author_id);
	`)
	return err
}

// translate keeps the server's SQLSTATE, message and detail.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NoRows()
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &apperror.BackendError{Code: pgErr.Code, Message: pgErr.Message, Details: pgErr.Detail}
	}
	return err
}

func requireOne(tag pgconn.CommandTag, what, id string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: %s %s: %w", what, id, apperror.NoRows())
	}
	return nil
}
