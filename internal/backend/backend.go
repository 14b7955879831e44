// Package backend is the site's auth and data service, embedded in the
// server process.
//
// Handlers never touch the store directly. They ask the Factory for a Client
// scoped to the incoming request (its cookies, and the identity they carry) or,
// for the few operations that need it, an AdminClient that bypasses row-level
// rules. The request-scoped client may rotate the session while it works; it
// writes Set-Cookie on the response and rewrites the request's Cookie header so
// that everything later in the same request sees the new session.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

const (
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour

	// authCodeTTL bounds how long a confirmation link stays usable.
	authCodeTTL = 10 * time.Minute
)

// Config describes the backend a Factory talks to.
type Config struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	JWTSecret      string

	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AutoConfirm   bool
	DisableSignup bool
	SecureCookies bool

	// SiteURL is the public origin; confirmation links default to
	// SiteURL + "/auth/callback".
	SiteURL string
}

// Configured reports whether the backend address and public key are set.
func (c Config) Configured() bool {
	return c.URL != "" && c.AnonKey != ""
}

// Deps are the collaborators a configured Factory works with. Store and
// Refresh are required; the rest have defaults.
type Deps struct {
	Store     repository.Store
	Refresh   RefreshStore
	Mailer    Mailer
	Passwords *auth.PasswordService
	Logger    *slog.Logger
}

// Factory builds request-scoped and administrative clients.
type Factory struct {
	cfg       Config
	store     repository.Store
	refresh   RefreshStore
	mailer    Mailer
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	events    *Events
	logger    *slog.Logger
	now       func() time.Time
}

// NewFactory validates cfg and deps. An unconfigured cfg yields a Factory
// whose clients report every data call as not configured.
func NewFactory(cfg Config, deps Deps) (*Factory, error) {
	f := &Factory{
		cfg:    cfg,
		events: NewEvents(),
		logger: deps.Logger,
		now:    time.Now,
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if !cfg.Configured() {
		return f, nil
	}

	if deps.Store == nil || deps.Refresh == nil {
		return nil, errors.New("backend: store and refresh store are required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}

	f.cfg = cfg
	f.store = deps.Store
	f.refresh = deps.Refresh
	f.tokens = tokens
	f.mailer = deps.Mailer
	if f.mailer == nil {
		f.mailer = LogMailer{Logger: f.logger}
	}
	f.passwords = deps.Passwords
	if f.passwords == nil {
		f.passwords = auth.NewPasswordService()
	}
	return f, nil
}

// Configured reports whether clients can reach a real backend.
func (f *Factory) Configured() bool {
	return f.cfg.Configured()
}

// Events is the auth event bus.
func (f *Factory) Events() *Events {
	return f.events
}

// ForRequest returns a client acting with the credentials carried by r.
// Cookie changes are written to w and mirrored into r. Callers must pass the
// same w on to whatever writes the response.
func (f *Factory) ForRequest(w http.ResponseWriter, r *http.Request) *Client {
	if !f.Configured() {
		return unconfiguredClient()
	}
	s := &session{f: f, w: w, r: r}
	return &Client{
		Auth:     s,
		Posts:    &postTable{s: s},
		Profiles: &profileTable{s: s},
	}
}

// Admin returns the privileged client. It needs the service-role key.
func (f *Factory) Admin() (*AdminClient, error) {
	if !f.Configured() || f.cfg.ServiceRoleKey == "" {
		return nil, apperror.Backend(apperror.CodeNotConfigured, "service role key is not configured")
	}
	return &AdminClient{Auth: &adminAuth{f: f}}, nil
}

// Close stops the event bus and releases the refresh store and database.
func (f *Factory) Close() error {
	f.events.Close()

	var errs []error
	if f.refresh != nil {
		if err := f.refresh.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing refresh store: %w", err))
		}
	}
	if f.store != nil {
		if err := f.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (f *Factory) publish(t EventType, u *model.User) {
	f.events.Publish(Event{Type: t, User: *u, At: f.now()})
}

// adminAuth bypasses row rules. Only call it with an id obtained from the
// request-scoped GetUser.
type adminAuth struct {
	f *Factory
}

// DeleteUser removes the account, revokes all its sessions and cascades to
// its profile and posts.
func (a *adminAuth) DeleteUser(ctx context.Context, id string) error {
	acct, err := a.f.store.AccountByID(ctx, id)
	if err != nil {
		if apperror.IsNoRows(err) {
			return apperror.Backend(apperror.CodeUserNotFound, "User not found")
		}
		return err
	}

	if err := a.f.refresh.RevokeUser(ctx, id); err != nil {
		return fmt.Errorf("backend: revoking sessions for %s: %w", id, err)
	}
	if err := a.f.store.DeleteAccount(ctx, id); err != nil {
		return err
	}

	a.f.publish(EventUserDeleted, acct.User())
	return nil
}
