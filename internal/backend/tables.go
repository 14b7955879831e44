package backend

import (
	"context"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// postTable applies the posts row policies: anyone reads, an identity inserts
// only as itself, and update and delete only ever match the identity's own
// rows.
type postTable struct {
	s *session
}

func (t *postTable) List(ctx context.Context, q repository.PostQuery) ([]model.Post, int, error) {
	return t.s.f.store.ListPosts(ctx, q)
}

func (t *postTable) GetByID(ctx context.Context, id string) (*model.Post, error) {
	return t.s.f.store.GetPost(ctx, id)
}

func (t *postTable) AuthorOf(ctx context.Context, id string) (string, error) {
	p, err := t.s.f.store.GetPost(ctx, id)
	if err != nil {
		return "", err
	}
	return p.AuthorID, nil
}

func (t *postTable) Insert(ctx context.Context, p *model.Post) error {
	u, err := t.s.GetUser(ctx)
	if err != nil {
		return err
	}
	if u == nil || p.AuthorID != u.ID {
		return apperror.RowLevelSecurity("posts")
	}
	if p.ID == "" {
		p.ID = xid.New().String()
	}
	return t.s.f.store.InsertPost(ctx, p)
}

// UpdateFields reports NoRows when the post is missing or not the identity's.
func (t *postTable) UpdateFields(ctx context.Context, id string, f repository.PostFields) (*model.Post, error) {
	u, err := t.s.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperror.NoRows()
	}
	return t.s.f.store.UpdatePost(ctx, id, u.ID, f)
}

// Delete matches nothing, without error, for a row the identity does not own.
func (t *postTable) Delete(ctx context.Context, id string) error {
	u, err := t.s.GetUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	_, err = t.s.f.store.DeletePost(ctx, id, u.ID)
	return err
}

// profileTable: anyone reads; only the owner updates.
type profileTable struct {
	s *session
}

func (t *profileTable) List(ctx context.Context, opts repository.ListOptions) ([]model.Profile, int, error) {
	return t.s.f.store.ListProfiles(ctx, opts)
}

func (t *profileTable) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return t.s.f.store.GetProfile(ctx, id)
}

func (t *profileTable) UpdateFields(ctx context.Context, id string, fields map[string]*string) (*model.Profile, error) {
	u, err := t.s.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil || u.ID != id {
		return nil, apperror.NoRows()
	}
	return t.s.f.store.UpdateProfile(ctx, id, fields)
}
