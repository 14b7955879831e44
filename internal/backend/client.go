package backend

import (
	"context"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// Identity is a user asserted by an external OAuth provider.
type Identity struct {
	Provider  string
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// SignUpResult reports the new user and whether a session was started. With
// confirmation required, no session exists until the emailed code is
// exchanged.
type SignUpResult struct {
	User           *model.User
	SessionStarted bool
}

// Auth is the session side of a request-scoped client.
type Auth interface {
	// GetUser resolves the identity behind the request's session, rotating the
	// session when only the refresh token is still valid. It returns nil, nil
	// for an anonymous request.
	GetUser(ctx context.Context) (*model.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*model.User, error)
	SignUp(ctx context.Context, email, password, redirectTo string) (*SignUpResult, error)
	SignOut(ctx context.Context) error
	ExchangeCodeForSession(ctx context.Context, code string) (*model.User, error)
	SignInWithIdentity(ctx context.Context, id Identity) (*model.User, error)
}

// Posts is the posts table as seen by the request's identity.
type Posts interface {
	List(ctx context.Context, q repository.PostQuery) ([]model.Post, int, error)
	GetByID(ctx context.Context, id string) (*model.Post, error)
	AuthorOf(ctx context.Context, id string) (string, error)
	Insert(ctx context.Context, p *model.Post) error
	UpdateFields(ctx context.Context, id string, f repository.PostFields) (*model.Post, error)
	Delete(ctx context.Context, id string) error
}

// Profiles is the profiles table as seen by the request's identity.
type Profiles interface {
	List(ctx context.Context, opts repository.ListOptions) ([]model.Profile, int, error)
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	UpdateFields(ctx context.Context, id string, fields map[string]*string) (*model.Profile, error)
}

// Client is a request-scoped backend handle.
type Client struct {
	Auth     Auth
	Posts    Posts
	Profiles Profiles
}

// AdminAuth is the privileged auth surface.
type AdminAuth interface {
	DeleteUser(ctx context.Context, id string) error
}

// AdminClient bypasses row-level rules. It must only ever act on ids the
// request-scoped client has already resolved.
type AdminClient struct {
	Auth AdminAuth
}

func errNotConfigured() error {
	return apperror.Backend(apperror.CodeNotConfigured, "backend is not configured")
}

func unconfiguredClient() *Client {
	return &Client{Auth: unconfiguredAuth{}, Posts: unconfiguredPosts{}, Profiles: unconfiguredProfiles{}}
}

type unconfiguredAuth struct{}

func (unconfiguredAuth) GetUser(context.Context) (*model.User, error) { return nil, nil }
func (unconfiguredAuth) SignInWithPassword(context.Context, string, string) (*model.User, error) {
	return nil, errNotConfigured()
}
func (unconfiguredAuth) SignUp(context.Context, string, string, string) (*SignUpResult, error) {
	return nil, errNotConfigured()
}
func (unconfiguredAuth) SignOut(context.Context) error { return nil }
func (unconfiguredAuth) ExchangeCodeForSession(context.Context, string) (*model.User, error) {
	return nil, errNotConfigured()
}
func (unconfiguredAuth) SignInWithIdentity(context.Context, Identity) (*model.User, error) {
	return nil, errNotConfigured()
}

type unconfiguredPosts struct{}

func (unconfiguredPosts) List(context.Context, repository.PostQuery) ([]model.Post, int, error) {
	return nil, 0, errNotConfigured()
}
func (unconfiguredPosts) GetByID(context.Context, string) (*model.Post, error) {
	return nil, errNotConfigured()
}
func (unconfiguredPosts) AuthorOf(context.Context, string) (string, error) {
	return "", errNotConfigured()
}
func (unconfiguredPosts) Insert(context.Context, *model.Post) error { return errNotConfigured() }
func (unconfiguredPosts) UpdateFields(context.Context, string, repository.PostFields) (*model.Post, error) {
	return nil, errNotConfigured()
}
func (unconfiguredPosts) Delete(context.Context, string) error { return errNotConfigured() }

type unconfiguredProfiles struct{}

func (unconfiguredProfiles) List(context.Context, repository.ListOptions) ([]model.Profile, int, error) {
	return nil, 0, errNotConfigured()
}
func (unconfiguredProfiles) GetByID(context.Context, string) (*model.Profile, error) {
	return nil, errNotConfigured()
}
func (unconfiguredProfiles) UpdateFields(context.Context, string, map[string]*string) (*model.Profile, error) {
	return nil, errNotConfigured()
}
