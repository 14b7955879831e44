package service

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/backend"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAuth resolves a fixed identity and records what was asked of it.
type fakeAuth struct {
	user    *model.User
	userErr error

	signInErr   error
	signUpErr   error
	signUpRes   *backend.SignUpResult
	exchangeErr error
	identityErr error
	signOutErr  error

	signedOut    bool
	signInEmail  string
	redirectTo   string
	exchanged    string
	lastIdentity backend.Identity
}

func (f *fakeAuth) GetUser(context.Context) (*model.User, error) {
	return f.user, f.userErr
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, _ string) (*model.User, error) {
	f.signInEmail = email
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &model.User{ID: "u-1", Email: email}, nil
}

func (f *fakeAuth) SignUp(_ context.Context, email, _ string, redirectTo string) (*backend.SignUpResult, error) {
	f.redirectTo = redirectTo
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	if f.signUpRes != nil {
		return f.signUpRes, nil
	}
	return &backend.SignUpResult{User: &model.User{ID: "u-new", Email: email}}, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.signedOut = true
	return f.signOutErr
}

func (f *fakeAuth) ExchangeCodeForSession(_ context.Context, code string) (*model.User, error) {
	f.exchanged = code
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &model.User{ID: "u-1"}, nil
}

func (f *fakeAuth) SignInWithIdentity(_ context.Context, id backend.Identity) (*model.User, error) {
	f.lastIdentity = id
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	return &model.User{ID: "u-gh", Email: id.Email}, nil
}

// fakePosts is an in-memory posts table. It does not apply row rules; the
// services are expected to check ownership before writing.
type fakePosts struct {
	posts map[string]*model.Post
	seq   int

	listErr   error
	insertErr error
	deleteErr error

	lastQuery repository.PostQuery
	deleted   []string
	updates   int
}

func newFakePosts(posts ...model.Post) *fakePosts {
	f := &fakePosts{posts: make(map[string]*model.Post)}
	for i := range posts {
		p := posts[i]
		f.posts[p.ID] = &p
	}
	return f
}

func (f *fakePosts) List(_ context.Context, q repository.PostQuery) ([]model.Post, int, error) {
	f.lastQuery = q
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var matched []model.Post
	for _, p := range f.posts {
		if q.Category == "" || p.Category == q.Category {
			matched = append(matched, *p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)
	if q.Offset >= total {
		return nil, total, nil
	}
	end := min(q.Offset+q.Limit, total)
	return matched[q.Offset:end], total, nil
}

func (f *fakePosts) GetByID(_ context.Context, id string) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NoRows()
	}
	out := *p
	return &out, nil
}

func (f *fakePosts) AuthorOf(ctx context.Context, id string) (string, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return p.AuthorID, nil
}

func (f *fakePosts) Insert(_ context.Context, p *model.Post) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.seq++
	p.ID = "p-new"
	stored := *p
	f.posts[p.ID] = &stored
	return nil
}

func (f *fakePosts) UpdateFields(_ context.Context, id string, fields repository.PostFields) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NoRows()
	}
	f.updates++
	if fields.Title != nil {
		p.Title = *fields.Title
	}
	if fields.Content != nil {
		p.Content = *fields.Content
	}
	if fields.Category != nil {
		p.Category = *fields.Category
	}
	out := *p
	return &out, nil
}

func (f *fakePosts) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	delete(f.posts, id)
	return nil
}

type fakeProfiles struct {
	profiles  map[string]*model.Profile
	updateErr error
	listErr   error

	lastOpts   repository.ListOptions
	lastFields map[string]*string
	updates    int
}

func newFakeProfiles(profiles ...model.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: make(map[string]*model.Profile)}
	for i := range profiles {
		p := profiles[i]
		f.profiles[p.ID] = &p
	}
	return f
}

func (f *fakeProfiles) List(_ context.Context, opts repository.ListOptions) ([]model.Profile, int, error) {
	f.lastOpts = opts
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	out := make([]model.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperror.NoRows()
	}
	out := *p
	return &out, nil
}

func (f *fakeProfiles) UpdateFields(ctx context.Context, id string, fields map[string]*string) (*model.Profile, error) {
	f.updates++
	f.lastFields = fields
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperror.NoRows()
	}
	if v, ok := fields["username"]; ok {
		p.Username = v
	}
	if v, ok := fields["bio"]; ok {
		p.Bio = v
	}
	return f.GetByID(ctx, id)
}

type fakeAdmin struct {
	deleted []string
	err     error
}

func (f *fakeAdmin) DeleteUser(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func alice() *model.User {
	return &model.User{ID: "alice", Email: "alice@example.com"}
}
