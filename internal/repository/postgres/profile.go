package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

const profileColumns = `id, username, full_name, avatar_url, bio, website, created_at, updated_at`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.Bio, &p.Website, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) ListProfiles(ctx context.Context, opts repository.ListOptions) ([]model.Profile, int, error) {
	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres: counting profiles: %w", translate(err))
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: listing profiles: %w", translate(err))
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0, opts.Limit)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: scanning profile row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: iterating profiles: %w", translate(err))
	}
	return profiles, total, nil
}

func (db *DB) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("postgres: getting profile %s: %w", id, translate(err))
	}
	return p, nil
}

func (db *DB) UpdateProfile(ctx context.Context, id string, fields map[string]*string) (*model.Profile, error) {
	if len(fields) == 0 {
		return db.GetProfile(ctx, id)
	}
	for col := range fields {
		if !slices.Contains(model.ProfileFields, col) {
			return nil, apperror.Backend(apperror.CodeUndefinedColumn, fmt.Sprintf(`column "%s" of relation "profiles" does not exist`, col))
		}
	}

	sets := []string{"updated_at = now()"}
	args := []any{id}
	for _, col := range model.ProfileFields {
		if v, ok := fields[col]; ok {
			args = append(args, v)
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}

	p, err := scanProfile(db.pool.QueryRow(ctx,
		`UPDATE profiles SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+profileColumns,
		args...,
	))
	if err != nil {
		return nil, fmt.Errorf("postgres: updating profile %s: %w", id, translate(err))
	}
	return p, nil
}
