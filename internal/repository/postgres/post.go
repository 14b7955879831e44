package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

const postColumns = `id, title, content, category, author_id, author_name, created_at, updated_at`

func scanPost(row pgx.Row) (*model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Category, &p.AuthorID, &p.AuthorName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) ListPosts(ctx context.Context, q repository.PostQuery) ([]model.Post, int, error) {
	var total int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts WHERE ($1 = '' OR category = $1)`, q.Category,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: counting posts: %w", translate(err))
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 WHERE ($1 = '' OR category = $1)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		q.Category, q.Limit, q.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: listing posts: %w", translate(err))
	}
	defer rows.Close()

	posts := make([]model.Post, 0, q.Limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: iterating posts: %w", translate(err))
	}
	return posts, total, nil
}

func (db *DB) GetPost(ctx context.Context, id string) (*model.Post, error) {
	p, err := scanPost(db.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("postgres: getting post %s: %w", id, translate(err))
	}
	return p, nil
}

func (db *DB) InsertPost(ctx context.Context, p *model.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := db.pool.Exec(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Title, p.Content, p.Category, p.AuthorID, p.AuthorName, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: inserting post: %w", translate(err))
	}
	return nil
}

func (db *DB) UpdatePost(ctx context.Context, id, authorID string, f repository.PostFields) (*model.Post, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id, authorID}
	add := func(col string, v *string) {
		if v != nil {
			args = append(args, *v)
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	add("title", f.Title)
	add("content", f.Content)
	add("category", f.Category)

	p, err := scanPost(db.pool.QueryRow(ctx,
		`UPDATE posts SET `+strings.Join(sets, ", ")+`
		 WHERE id = $1 AND author_id = $2
		 RETURNING `+postColumns,
		args...,
	))
	if err != nil {
		return nil, fmt.Errorf("postgres: updating post %s: %w", id, translate(err))
	}
	return p, nil
}

func (db *DB) DeletePost(ctx context.Context, id, authorID string) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return 0, fmt.Errorf("postgres: deleting post %s: %w", id, translate(err))
	}
	return tag.RowsAffected(), nil
}
