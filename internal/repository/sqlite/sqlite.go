// Package sqlite implements repository.Store on an embedded SQLite database.
//
// modernc.org/sqlite is a pure Go build of SQLite, so the server needs no C
// toolchain. The pool is limited to one connection: SQLite serialises writers
// anyway, per-connection PRAGMAs stay in force, and a ":memory:" database is
// not silently split across connections.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/repository"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and brings the schema up to date.
// Use ":memory:" for a throwaway database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Off by default in SQLite. Account deletion relies on the cascades.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id              TEXT PRIMARY KEY,
			email           TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash   TEXT NOT NULL DEFAULT '',
			confirmed_at    DATETIME,
			last_sign_in_at DATETIME,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS identities (
			provider   TEXT NOT NULL,
			subject    TEXT NOT NULL,
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (provider, subject)
		);

		CREATE TABLE IF NOT EXISTS auth_codes (
			code       TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			expires_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating auth tables: %w", err)
	}

	// username is UNIQUE but nullable: any number of profiles may leave it unset.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id         TEXT PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
			username   TEXT UNIQUE,
			full_name  TEXT,
			avatar_url TEXT,
			bio        TEXT,
			website    TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL CHECK (length(trim(title)) BETWEEN 1 AND 200),
			content     TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT 'general'
			            CHECK (category IN ('tech', 'daily', 'general')),
			author_id   TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			author_name TEXT NOT NULL,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
		CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category, created_at);
		CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	return nil
}

// translate turns driver errors into backend errors with SQLSTATE codes, the
// vocabulary the rest of the system understands. The driver message is kept
// because it names the offending column, e.g. "profiles.username".
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NoRows()
	}

	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return err
	}

	var code string
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		code = apperror.CodeUniqueViolation
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		code = apperror.CodeForeignKey
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		code = apperror.CodeNotNull
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		code = apperror.CodeCheckViolation
	default:
		return err
	}
	return &apperror.BackendError{Code: code, Message: se.Error()}
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
