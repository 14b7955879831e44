package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

const postColumns = `id, title, content, category, author_id, author_name, created_at, updated_at`

func scanPost(row scanner) (*model.Post, error) {
	var p model.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Category,
		&p.AuthorID, &p.AuthorName, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPosts returns one page, newest first, and the total matching the
// category filter. The id tie-break keeps pages stable when timestamps collide.
func (db *DB) ListPosts(ctx context.Context, q repository.PostQuery) ([]model.Post, int, error) {
	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE (? = '' OR category = ?)`,
		q.Category, q.Category,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting posts: %w", translate(err))
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 WHERE (? = '' OR category = ?)
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		q.Category, q.Category, q.Limit, q.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing posts: %w", translate(err))
	}
	defer rows.Close()

	posts := make([]model.Post, 0, q.Limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, total, nil
}

func (db *DB) GetPost(ctx context.Context, id string) (*model.Post, error) {
	p, err := scanPost(db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, translate(err))
	}
	return p, nil
}

// InsertPost stores p. The caller assigns ID; timestamps are set here.
func (db *DB) InsertPost(ctx context.Context, p *model.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Content, p.Category, p.AuthorID, p.AuthorName, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", translate(err))
	}
	return nil
}

func (db *DB) UpdatePost(ctx context.Context, id, authorID string, f repository.PostFields) (*model.Post, error) {
	var (
		sets []string
		args []any
	)
	if f.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *f.Title)
	}
	if f.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *f.Content)
	}
	if f.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *f.Category)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id, authorID)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET `+strings.Join(sets, ", ")+` WHERE id = ? AND author_id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating post %s: %w", id, translate(err))
	}
	if err := requireOne(res, "post", id); err != nil {
		return nil, err
	}
	return db.GetPost(ctx, id)
}

func (db *DB) DeletePost(ctx context.Context, id, authorID string) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ? AND author_id = ?`, id, authorID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting post %s: %w", id, translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}
