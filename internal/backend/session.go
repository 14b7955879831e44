package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
	"github.com/sakif/portfolio/internal/validate"
)

// Session cookie names.
const (
	AccessCookie  = "session_access"
	RefreshCookie = "session_refresh"
)

// session implements Auth for one request. The resolved identity is cached
// so repeated GetUser calls cost one lookup and at most one rotation.
type session struct {
	f *Factory
	w http.ResponseWriter
	r *http.Request

	resolved bool
	user     *model.User
}

func (s *session) GetUser(ctx context.Context) (*model.User, error) {
	if s.resolved {
		return s.user, nil
	}
	u, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	s.resolved, s.user = true, u
	return u, nil
}

func (s *session) resolve(ctx context.Context) (*model.User, error) {
	access := s.cookie(AccessCookie)
	refresh := s.cookie(RefreshCookie)
	if access == "" && refresh == "" {
		return nil, nil
	}

	if access != "" {
		claims, err := s.f.tokens.Validate(access)
		if err == nil {
			a, err := s.f.store.AccountByID(ctx, claims.Subject)
			switch {
			case err == nil:
				return a.User(), nil
			case apperror.IsNoRows(err):
				s.clearCookies()
				return nil, nil
			default:
				return nil, err
			}
		}
	}

	if refresh == "" {
		s.clearCookies()
		return nil, nil
	}

	// An unknown refresh token leaves the cookies alone: a concurrent
	// response may already have replaced them, and expiring them here would
	// sign that new session out.
	rec, err := s.f.refresh.Consume(ctx, refresh)
	reused := errors.Is(err, ErrRefreshTokenReused)
	switch {
	case err == nil, reused:
	case errors.Is(err, ErrRefreshTokenNotFound):
		return nil, nil
	default:
		return nil, err
	}

	a, err := s.f.store.AccountByID(ctx, rec.UserID)
	if err != nil {
		if apperror.IsNoRows(err) {
			s.clearCookies()
			return nil, nil
		}
		return nil, err
	}

	// Another request from the same browser rotated this session a moment
	// ago and its response carries the new cookies. Serve the same user
	// without touching them.
	if reused {
		return a.User(), nil
	}

	if err := s.issue(ctx, a, rec.SessionID); err != nil {
		return nil, err
	}
	u := a.User()
	s.f.publish(EventTokenRefreshed, u)
	return u, nil
}

func (s *session) SignInWithPassword(ctx context.Context, email, password string) (*model.User, error) {
	a, err := s.f.store.AccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !apperror.IsNoRows(err) {
			return nil, err
		}
		s.f.passwords.VerifyNothing(password)
		return nil, invalidCredentials()
	}

	if a.PasswordHash == "" {
		s.f.passwords.VerifyNothing(password)
		return nil, invalidCredentials()
	}
	if err := s.f.passwords.Verify(a.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if a.ConfirmedAt == nil && !s.f.cfg.AutoConfirm {
		return nil, apperror.Backend(apperror.CodeEmailNotConfirmed, "Email not confirmed")
	}
	return s.start(ctx, a)
}

func (s *session) SignUp(ctx context.Context, email, password, redirectTo string) (*SignUpResult, error) {
	if s.f.cfg.DisableSignup {
		return nil, apperror.Backend(apperror.CodeSignupDisabled, "Signups not allowed for this instance")
	}

	email = normalizeEmail(email)
	if !validate.IsEmail(email) {
		return nil, apperror.Backend(apperror.CodeInvalidEmail, "Unable to validate email address: invalid format")
	}
	if utf8.RuneCountInString(password) < validate.MinPasswordLength {
		return nil, apperror.Backend(apperror.CodeWeakPassword,
			fmt.Sprintf("Password should be at least %d characters.", validate.MinPasswordLength))
	}

	if len(password) > validate.MaxPasswordBytes {
		return nil, apperror.Backend(apperror.CodePasswordTooLong,
			fmt.Sprintf("Password cannot be longer than %d bytes.", validate.MaxPasswordBytes))
	}

	hash, err := s.f.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("backend: hashing password: %w", err)
	}

	a := &repository.Account{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	if s.f.cfg.AutoConfirm {
		now := s.f.now().UTC()
		a.ConfirmedAt = &now
	}

	if err := s.f.store.CreateAccount(ctx, a); err != nil {
		if apperror.CodeOf(err) == apperror.CodeUniqueViolation {
			return nil, apperror.Backend(apperror.CodeUserExists, "User already registered")
		}
		return nil, err
	}

	if s.f.cfg.AutoConfirm {
		u, err := s.start(ctx, a)
		if err != nil {
			return nil, err
		}
		return &SignUpResult{User: u, SessionStarted: true}, nil
	}

	code, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	if err := s.f.store.SaveAuthCode(ctx, code, a.ID, s.f.now().Add(authCodeTTL)); err != nil {
		return nil, err
	}

	link, err := s.confirmationLink(redirectTo, code)
	if err != nil {
		return nil, err
	}
	if err := s.f.mailer.SendConfirmation(ctx, a.Email, link); err != nil {
		return nil, fmt.Errorf("backend: sending confirmation: %w", err)
	}

	return &SignUpResult{User: a.User()}, nil
}

func (s *session) SignOut(ctx context.Context) error {
	// Resolving may rotate the session, so both the token the request came
	// with and the one that replaced it are revoked.
	presented := s.cookie(RefreshCookie)
	u, err := s.GetUser(ctx)
	if err != nil {
		s.f.logger.Warn("sign out: resolving session", "error", err)
	}

	for _, token := range []string{presented, s.cookie(RefreshCookie)} {
		if token == "" {
			continue
		}
		if err := s.f.refresh.Revoke(ctx, token); err != nil {
			return fmt.Errorf("backend: revoking refresh token: %w", err)
		}
	}

	s.clearCookies()
	s.resolved, s.user = true, nil
	if u != nil {
		s.f.publish(EventSignedOut, u)
	}
	return nil
}

func (s *session) ExchangeCodeForSession(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, flowStateNotFound()
	}

	accountID, expiresAt, err := s.f.store.ConsumeAuthCode(ctx, code)
	if err != nil {
		if apperror.IsNoRows(err) {
			return nil, flowStateNotFound()
		}
		return nil, err
	}

	now := s.f.now().UTC()
	if !now.Before(expiresAt) {
		return nil, apperror.Backend(apperror.CodeFlowStateNotFound, "flow state has expired")
	}

	a, err := s.f.store.AccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if a.ConfirmedAt == nil {
		if err := s.f.store.ConfirmAccount(ctx, a.ID, now); err != nil {
			return nil, err
		}
		a.ConfirmedAt = &now
	}
	return s.start(ctx, a)
}

// SignInWithIdentity finds the account linked to the provider identity,
// links an existing account with the same email, or creates a new confirmed
// account. Profile name and avatar are seeded from the provider on creation.
func (s *session) SignInWithIdentity(ctx context.Context, id Identity) (*model.User, error) {
	a, err := s.f.store.AccountByIdentity(ctx, id.Provider, id.Subject)
	if err == nil {
		return s.start(ctx, a)
	}
	if !apperror.IsNoRows(err) {
		return nil, err
	}

	email := normalizeEmail(id.Email)
	if !validate.IsEmail(email) {
		return nil, apperror.Backend(apperror.CodeInvalidEmail, "provider did not return a usable email address")
	}

	a, err = s.f.store.AccountByEmail(ctx, email)
	switch {
	case err == nil:
	case apperror.IsNoRows(err):
		if s.f.cfg.DisableSignup {
			return nil, apperror.Backend(apperror.CodeSignupDisabled, "Signups not allowed for this instance")
		}
		now := s.f.now().UTC()
		a = &repository.Account{ID: uuid.NewString(), Email: email, ConfirmedAt: &now}
		if err := s.f.store.CreateAccount(ctx, a); err != nil {
			return nil, err
		}
		seed := map[string]*string{}
		if id.Name != "" {
			seed["full_name"] = &id.Name
		}
		if id.AvatarURL != "" {
			seed["avatar_url"] = &id.AvatarURL
		}
		if _, err := s.f.store.UpdateProfile(ctx, a.ID, seed); err != nil {
			s.f.logger.Warn("seeding profile from identity", "user_id", a.ID, "error", err)
		}
	default:
		return nil, err
	}

	if err := s.f.store.LinkIdentity(ctx, a.ID, id.Provider, id.Subject); err != nil {
		return nil, err
	}
	return s.start(ctx, a)
}

// start opens a new session for a.
func (s *session) start(ctx context.Context, a *repository.Account) (*model.User, error) {
	now := s.f.now().UTC()
	if err := s.f.store.RecordSignIn(ctx, a.ID, now); err != nil {
		return nil, err
	}
	a.LastSignInAt = &now

	if err := s.issue(ctx, a, xid.New().String()); err != nil {
		return nil, err
	}

	u := a.User()
	s.resolved, s.user = true, u
	s.f.publish(EventSignedIn, u)
	return u, nil
}

// issue mints a fresh access/refresh pair for the session and sets both
// cookies.
func (s *session) issue(ctx context.Context, a *repository.Account, sessionID string) error {
	access, _, err := s.f.tokens.Issue(a.ID, a.Email, sessionID)
	if err != nil {
		return err
	}
	refresh, err := auth.NewOpaqueToken()
	if err != nil {
		return err
	}
	rec := RefreshRecord{UserID: a.ID, SessionID: sessionID}
	if err := s.f.refresh.Save(ctx, refresh, rec, s.f.cfg.RefreshTTL); err != nil {
		return fmt.Errorf("backend: saving refresh token: %w", err)
	}

	maxAge := int(s.f.cfg.RefreshTTL.Seconds())
	s.setCookie(s.newCookie(AccessCookie, access, maxAge))
	s.setCookie(s.newCookie(RefreshCookie, refresh, maxAge))
	return nil
}

func (s *session) clearCookies() {
	if s.cookie(AccessCookie) != "" {
		s.setCookie(s.newCookie(AccessCookie, "", -1))
	}
	if s.cookie(RefreshCookie) != "" {
		s.setCookie(s.newCookie(RefreshCookie, "", -1))
	}
}

func (s *session) newCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.f.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *session) cookie(name string) string {
	c, err := s.r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// setCookie writes c to the response and mirrors it into the request's
// Cookie header, so later reads in this request see the new value.
func (s *session) setCookie(c *http.Cookie) {
	if s.w != nil {
		http.SetCookie(s.w, c)
	}

	var parts []string
	for _, old := range s.r.Cookies() {
		if old.Name != c.Name {
			parts = append(parts, old.Name+"="+old.Value)
		}
	}
	if c.MaxAge >= 0 && c.Value != "" {
		parts = append(parts, c.Name+"="+c.Value)
	}

	if len(parts) == 0 {
		s.r.Header.Del("Cookie")
		return
	}
	s.r.Header.Set("Cookie", strings.Join(parts, "; "))
}

func (s *session) confirmationLink(redirectTo, code string) (string, error) {
	if redirectTo == "" {
		redirectTo = strings.TrimRight(s.f.cfg.SiteURL, "/") + "/auth/callback"
	}
	u, err := url.Parse(redirectTo)
	if err != nil {
		return "", fmt.Errorf("backend: invalid redirect URL %q: %w", redirectTo, err)
	}
	q := u.Query()
	q.Set("code", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidCredentials() error {
	return apperror.Backend(apperror.CodeInvalidCredentials, "Invalid login credentials")
}

func flowStateNotFound() error {
	return apperror.Backend(apperror.CodeFlowStateNotFound, "invalid flow state, no valid flow state found")
}
