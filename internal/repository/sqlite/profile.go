package sqlite

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

const profileColumns = `id, username, full_name, avatar_url, bio, website, created_at, updated_at`

func scanProfile(row scanner) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.Bio, &p.Website,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) ListProfiles(ctx context.Context, opts repository.ListOptions) ([]model.Profile, int, error) {
	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting profiles: %w", translate(err))
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+profileColumns+`
		 FROM profiles
		 ORDER BY created_at DESC, id
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing profiles: %w", translate(err))
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0, opts.Limit)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning profile row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating profiles: %w", err)
	}

	return profiles, total, nil
}

func (db *DB) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	p, err := scanProfile(db.conn.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting profile %s: %w", id, translate(err))
	}
	return p, nil
}

// UpdateProfile writes the given columns. Column names are checked against
// model.ProfileFields before they are spliced into the statement.
func (db *DB) UpdateProfile(ctx context.Context, id string, fields map[string]*string) (*model.Profile, error) {
	if len(fields) == 0 {
		return db.GetProfile(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	for _, col := range model.ProfileFields {
		v, ok := fields[col]
		if !ok {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	for col := range fields {
		if !slices.Contains(model.ProfileFields, col) {
			return nil, apperror.Backend(apperror.CodeUndefinedColumn, fmt.Sprintf(`column "%s" of relation "profiles" does not exist`, col))
		}
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE profiles SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating profile %s: %w", id, translate(err))
	}
	if err := requireOne(res, "profile", id); err != nil {
		return nil, err
	}
	return db.GetProfile(ctx, id)
}
