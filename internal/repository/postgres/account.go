package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sakif/portfolio/internal/repository"
)

const accountColumns = `id, email, password_hash, confirmed_at, created_at, last_sign_in_at`

func scanAccount(row pgx.Row) (*repository.Account, error) {
	var a repository.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.ConfirmedAt, &a.CreatedAt, &a.LastSignInAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (db *DB) CreateAccount(ctx context.Context, a *repository.Account) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.Email = strings.ToLower(a.Email)

	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO accounts (id, email, password_hash, confirmed_at, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $5)`,
			a.ID, a.Email, a.PasswordHash, a.ConfirmedAt, now,
		)
		if err != nil {
			return fmt.Errorf("postgres: inserting account: %w", translate(err))
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO profiles (id, created_at, updated_at) VALUES ($1, $2, $2)`, a.ID, now,
		)
		if err != nil {
			return fmt.Errorf("postgres: inserting profile for %s: %w", a.ID, translate(err))
		}
		return nil
	})
}

func (db *DB) AccountByID(ctx context.Context, id string) (*repository.Account, error) {
	a, err := scanAccount(db.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("postgres: getting account %s: %w", id, translate(err))
	}
	return a, nil
}

func (db *DB) AccountByEmail(ctx context.Context, email string) (*repository.Account, error) {
	a, err := scanAccount(db.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`, email,
	))
	if err != nil {
		return nil, fmt.Errorf("postgres: getting account by email: %w", translate(err))
	}
	return a, nil
}

func (db *DB) AccountByIdentity(ctx context.Context, provider, subject string) (*repository.Account, error) {
	a, err := scanAccount(db.pool.QueryRow(ctx,
		`SELECT a.id, a.email, a.password_hash, a.confirmed_at, a.created_at, a.last_sign_in_at
		 FROM accounts a
		 JOIN identities i ON i.account_id = a.id
		 WHERE i.provider = $1 AND i.subject = $2`,
		provider, subject,
	))
	if err != nil {
		return nil, fmt.Errorf("postgres: getting account for %s identity: %w", provider, translate(err))
	}
	return a, nil
}

func (db *DB) LinkIdentity(ctx context.Context, accountID, provider, subject string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO identities (provider, subject, account_id) VALUES ($1, $2, $3)`,
		provider, subject, accountID,
	)
	if err != nil {
		return fmt.Errorf("postgres: linking %s identity: %w", provider, translate(err))
	}
	return nil
}

func (db *DB) ConfirmAccount(ctx context.Context, id string, at time.Time) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE accounts SET confirmed_at = $1, updated_at = now() WHERE id = $2`, at, id,
	)
	if err != nil {
		return fmt.Errorf("postgres: confirming account %s: %w", id, translate(err))
	}
	return requireOne(tag, "account", id)
}

func (db *DB) RecordSignIn(ctx context.Context, id string, at time.Time) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE accounts SET last_sign_in_at = $1, updated_at = now() WHERE id = $2`, at, id,
	)
	if err != nil {
		return fmt.Errorf("postgres: recording sign-in for %s: %w", id, translate(err))
	}
	return requireOne(tag, "account", id)
}

func (db *DB) DeleteAccount(ctx context.Context, id string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting account %s: %w", id, translate(err))
	}
	return requireOne(tag, "account", id)
}

func (db *DB) SaveAuthCode(ctx context.Context, code, accountID string, expiresAt time.Time) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO auth_codes (code, account_id, expires_at) VALUES ($1, $2, $3)`,
		code, accountID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: saving auth code: %w", translate(err))
	}
	return nil
}

func (db *DB) ConsumeAuthCode(ctx context.Context, code string) (string, time.Time, error) {
	var (
		accountID string
		expiresAt time.Time
	)
	err := db.pool.QueryRow(ctx,
		`DELETE FROM auth_codes WHERE code = $1 RETURNING account_id, expires_at`, code,
	).Scan(&accountID, &expiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("postgres: consuming auth code: %w", translate(err))
	}
	return accountID, expiresAt, nil
}
