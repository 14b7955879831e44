package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/repository"
)

const accountColumns = `id, email, password_hash, confirmed_at, created_at, last_sign_in_at`

func scanAccount(row scanner) (*repository.Account, error) {
	var (
		a         repository.Account
		confirmed sql.NullTime
		lastIn    sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &confirmed, &a.CreatedAt, &lastIn); err != nil {
		return nil, err
	}
	a.ConfirmedAt = timePtr(confirmed)
	a.LastSignInAt = timePtr(lastIn)
	return &a, nil
}

// CreateAccount inserts the account and its profile row in one transaction.
func (db *DB) CreateAccount(ctx context.Context, a *repository.Account) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.Email = strings.ToLower(a.Email)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning account transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, confirmed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.PasswordHash, a.ConfirmedAt, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting account: %w", translate(err))
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (id, created_at, updated_at) VALUES (?, ?, ?)`,
		a.ID, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting profile for %s: %w", a.ID, translate(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing account: %w", err)
	}
	return nil
}

func (db *DB) AccountByID(ctx context.Context, id string) (*repository.Account, error) {
	a, err := scanAccount(db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting account %s: %w", id, translate(err))
	}
	return a, nil
}

func (db *DB) AccountByEmail(ctx context.Context, email string) (*repository.Account, error) {
	a, err := scanAccount(db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, strings.ToLower(email),
	))
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting account by email: %w", translate(err))
	}
	return a, nil
}

func (db *DB) AccountByIdentity(ctx context.Context, provider, subject string) (*repository.Account, error) {
	a, err := scanAccount(db.conn.QueryRowContext(ctx,
		`SELECT a.id, a.email, a.password_hash, a.confirmed_at, a.created_at, a.last_sign_in_at
		 FROM accounts a
		 JOIN identities i ON i.account_id = a.id
		 WHERE i.provider = ? AND i.subject = ?`,
		provider, subject,
	))
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting account for %s identity: %w", provider, translate(err))
	}
	return a, nil
}

func (db *DB) LinkIdentity(ctx context.Context, accountID, provider, subject string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO identities (provider, subject, account_id, created_at) VALUES (?, ?, ?, ?)`,
		provider, subject, accountID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: linking %s identity: %w", provider, translate(err))
	}
	return nil
}

func (db *DB) ConfirmAccount(ctx context.Context, id string, at time.Time) error {
	return db.touchAccount(ctx, "confirmed_at", id, at)
}

func (db *DB) RecordSignIn(ctx context.Context, id string, at time.Time) error {
	return db.touchAccount(ctx, "last_sign_in_at", id, at)
}

// touchAccount sets one timestamp column. column is always a constant.
func (db *DB) touchAccount(ctx context.Context, column, id string, at time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE accounts SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting %s on %s: %w", column, id, translate(err))
	}
	return requireOne(res, "account", id)
}

// DeleteAccount relies on ON DELETE CASCADE for identities, codes, the
// profile and posts.
func (db *DB) DeleteAccount(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting account %s: %w", id, translate(err))
	}
	return requireOne(res, "account", id)
}

func (db *DB) SaveAuthCode(ctx context.Context, code, accountID string, expiresAt time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO auth_codes (code, account_id, expires_at) VALUES (?, ?, ?)`,
		code, accountID, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving auth code: %w", translate(err))
	}
	return nil
}

func (db *DB) ConsumeAuthCode(ctx context.Context, code string) (string, time.Time, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sqlite: beginning auth code transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		accountID string
		expiresAt time.Time
	)
	err = tx.QueryRowContext(ctx,
		`SELECT account_id, expires_at FROM auth_codes WHERE code = ?`, code,
	).Scan(&accountID, &expiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sqlite: consuming auth code: %w", translate(err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM auth_codes WHERE code = ?`, code); err != nil {
		return "", time.Time{}, fmt.Errorf("sqlite: deleting auth code: %w", translate(err))
	}
	if err := tx.Commit(); err != nil {
		return "", time.Time{}, fmt.Errorf("sqlite: committing auth code: %w", err)
	}
	return accountID, expiresAt, nil
}

func requireOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite: %s %s: %w", what, id, apperror.NoRows())
	}
	return nil
}
