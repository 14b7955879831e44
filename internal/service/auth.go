package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/backend"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/validate"
)

const (
	MsgCallbackFailed    = "인증에 실패했습니다"
	MsgEmailNotConfirmed = "이메일 인증이 완료되지 않았습니다. 메일함을 확인해주세요."
	MsgLoginFailed       = "로그인 중 오류가 발생했습니다. 다시 시도해주세요."
	MsgSignUpFailed      = "회원가입 중 오류가 발생했습니다. 다시 시도해주세요."
	MsgConfirmationSent  = "메일함을 확인하고 인증을 완료해주세요."
	DefaultLoginRedirect = "/dashboard"
)

const githubProvider = "github"

// AuthService runs the account forms and callbacks against the request's
// session.
type AuthService struct {
	auth   backend.Auth
	errors apperror.Normalizer
	logger *slog.Logger
}

func NewAuthService(client *backend.Client, normalizer apperror.Normalizer, logger *slog.Logger) *AuthService {
	return &AuthService{
		auth:   client.Auth,
		errors: normalizer,
		logger: logger,
	}
}

// Login signs in with the form's email and password. Failures come back as
// validation errors carrying the message to show on the form.
func (s *AuthService) Login(ctx context.Context, input map[string]any) (*model.User, error) {
	if errs := validate.Login(input); !errs.Valid() {
		field, _ := errs.First("email", "password")
		return nil, apperror.Invalid(errs, field)
	}

	email := strings.TrimSpace(validate.String(input, "email"))
	user, err := s.auth.SignInWithPassword(ctx, email, validate.String(input, "password"))
	if err != nil {
		apperror.Log(s.logger, "signing in with password", err)
		return nil, apperror.ValidationFailed("", s.formMessage(err, MsgLoginFailed))
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))
	return user, nil
}

// SignUp registers the form's email and password. redirectTo is where the
// confirmation link lands; empty means the backend default.
func (s *AuthService) SignUp(ctx context.Context, input map[string]any, redirectTo string) (*backend.SignUpResult, error) {
	if errs := validate.SignUp(input); !errs.Valid() {
		field, _ := errs.First(validate.SignUpFieldOrder...)
		return nil, apperror.Invalid(errs, field)
	}

	email := strings.TrimSpace(validate.String(input, "email"))
	res, err := s.auth.SignUp(ctx, email, validate.String(input, "password"), redirectTo)
	if err != nil {
		apperror.Log(s.logger, "signing up", err)
		return nil, apperror.ValidationFailed("", s.formMessage(err, MsgSignUpFailed))
	}

	s.logger.Info("user signed up",
		slog.String("userID", res.User.ID),
		slog.Bool("sessionStarted", res.SessionStarted),
	)
	return res, nil
}

// Callback exchanges an emailed confirmation code for a session.
func (s *AuthService) Callback(ctx context.Context, code string) error {
	if code == "" {
		return apperror.ValidationFailed("code", MsgCallbackFailed)
	}
	if _, err := s.auth.ExchangeCodeForSession(ctx, code); err != nil {
		apperror.Log(s.logger, "exchanging confirmation code", err)
		return fmt.Errorf("service/auth: exchanging code: %w", err)
	}
	return nil
}

// SignInWithGitHub starts a session for a GitHub account, creating or linking
// the local account as needed.
func (s *AuthService) SignInWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*model.User, error) {
	if gh == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	name := gh.Name
	if name == "" {
		name = gh.Login
	}

	user, err := s.auth.SignInWithIdentity(ctx, backend.Identity{
		Provider:  githubProvider,
		Subject:   gh.Subject(),
		Email:     gh.Email,
		Name:      name,
		AvatarURL: gh.AvatarURL,
	})
	if err != nil {
		apperror.Log(s.logger, "signing in with GitHub", err)
		return nil, fmt.Errorf("service/auth: signing in GitHub user %s: %w", gh.Login, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", gh.Login),
	)
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.auth.SignOut(ctx); err != nil {
		apperror.Log(s.logger, "signing out", err)
		return fmt.Errorf("service/auth: signing out: %w", err)
	}
	return nil
}

// formMessage picks what the login and sign-up forms show for err.
func (s *AuthService) formMessage(err error, fallback string) string {
	if apperror.CodeOf(err) == apperror.CodeEmailNotConfirmed {
		return MsgEmailNotConfirmed
	}
	res := s.errors.Normalize(err)
	if !apperror.KnownCode(res.Code) && !s.errors.Debug {
		return fallback
	}
	return res.Error
}

// SafeRedirect returns target when it is a path on this site, else fallback.
// Absolute URLs, scheme-relative "//host" and backslash tricks are rejected.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return fallback
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return target
}
