// Package repository defines the storage contract of the embedded backend.
//
// A Store works with full privileges. Row-level rules (who may insert, update
// or delete which row) are enforced one layer up, in the request-scoped client
// built by package backend. Implementations report failures as
// *apperror.BackendError values carrying SQLSTATE-style codes: a missing row is
// apperror.NoRows(), a duplicate is 23505 and so on.
package repository

import (
	"context"
	"time"

	"github.com/sakif/portfolio/internal/model"
)

// ListOptions is limit/offset paging.
type ListOptions struct {
	Limit  int
	Offset int
}

// PostQuery selects a page of posts, newest first. An empty Category means
// every category.
type PostQuery struct {
	Category string
	Limit    int
	Offset   int
}

// PostFields is a partial post update. Nil fields are left alone.
type PostFields struct {
	Title    *string
	Content  *string
	Category *string
}

// Empty reports whether the update would write nothing.
func (f PostFields) Empty() bool {
	return f.Title == nil && f.Content == nil && f.Category == nil
}

// Account is the credential record behind a model.User.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
	LastSignInAt *time.Time
}

// User is the session identity view of the account.
func (a *Account) User() *model.User {
	return &model.User{
		ID:           a.ID,
		Email:        a.Email,
		ConfirmedAt:  a.ConfirmedAt,
		CreatedAt:    a.CreatedAt,
		LastSignInAt: a.LastSignInAt,
	}
}

// AccountRepository stores accounts, linked OAuth identities and one-time
// confirmation codes.
type AccountRepository interface {
	// CreateAccount inserts the account and its empty profile in one
	// transaction, so every account has a profile before it is first read.
	CreateAccount(ctx context.Context, a *Account) error
	AccountByID(ctx context.Context, id string) (*Account, error)
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	AccountByIdentity(ctx context.Context, provider, subject string) (*Account, error)
	LinkIdentity(ctx context.Context, accountID, provider, subject string) error
	ConfirmAccount(ctx context.Context, id string, at time.Time) error
	RecordSignIn(ctx context.Context, id string, at time.Time) error
	// DeleteAccount removes the account along with its identities, codes,
	// profile and posts.
	DeleteAccount(ctx context.Context, id string) error

	SaveAuthCode(ctx context.Context, code, accountID string, expiresAt time.Time) error
	// ConsumeAuthCode deletes the code and returns what it was issued for.
	// A second call with the same code reports NoRows.
	ConsumeAuthCode(ctx context.Context, code string) (accountID string, expiresAt time.Time, err error)
}

// PostRepository stores posts.
type PostRepository interface {
	// ListPosts returns the requested page and the exact count of rows
	// matching the filter.
	ListPosts(ctx context.Context, q PostQuery) ([]model.Post, int, error)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	InsertPost(ctx context.Context, p *model.Post) error
	// UpdatePost writes fields to the post only when it belongs to authorID.
	// A post that is missing or owned by someone else reports NoRows.
	UpdatePost(ctx context.Context, id, authorID string, fields PostFields) (*model.Post, error)
	// DeletePost removes the post only when it belongs to authorID and returns
	// the number of rows removed.
	DeletePost(ctx context.Context, id, authorID string) (int64, error)
}

// ProfileRepository stores profiles.
type ProfileRepository interface {
	ListProfiles(ctx context.Context, opts ListOptions) ([]model.Profile, int, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	// UpdateProfile writes the given columns. Keys must come from
	// model.ProfileFields; a nil value clears the column.
	UpdateProfile(ctx context.Context, id string, fields map[string]*string) (*model.Profile, error)
}

// Store is everything the embedded backend persists.
type Store interface {
	AccountRepository
	PostRepository
	ProfileRepository
	Close() error
}
