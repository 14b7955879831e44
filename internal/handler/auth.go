package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/middleware"
	"github.com/sakif/portfolio/internal/service"
)

const (
	stateCookie    = "oauth_state"
	redirectCookie = "oauth_redirect"
	oauthCookieAge = 600 // 10 minutes
)

// GitHubAuth is the OAuth flow of auth.GitHubProvider.
type GitHubAuth interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// AuthHandler serves the login, sign-up and callback routes.
type AuthHandler struct {
	backend       Backend
	github        GitHubAuth // nil when GitHub sign-in is off
	render        *Renderer
	normalizer    apperror.Normalizer
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(
	b Backend,
	github GitHubAuth,
	render *Renderer,
	n apperror.Normalizer,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		backend:       b,
		github:        github,
		render:        render,
		normalizer:    n,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

func (h *AuthHandler) service(w http.ResponseWriter, r *http.Request) *service.AuthService {
	return service.NewAuthService(clientFor(h.backend, w, r), h.normalizer, h.logger)
}

type loginPage struct {
	Redirect string
	GitHub   bool
}

func loginFailedURL() string {
	return middleware.LoginPath + "?error=" + url.QueryEscape(service.MsgCallbackFailed)
}

// HandleLoginPage handles GET /auth/login?redirect=&error=
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := pageData{
		Title: "로그인",
		Data: loginPage{
			Redirect: service.SafeRedirect(q.Get("redirect"), service.DefaultLoginRedirect),
			GitHub:   h.github != nil,
		},
	}
	// Only the callback's own message is shown; the parameter is not echoed.
	if q.Get("error") == service.MsgCallbackFailed {
		data.Error = service.MsgCallbackFailed
	}
	h.render.Render(w, r, http.StatusOK, "login", data)
}

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	input, echo, err := formInput(w, r, "email", "password")
	if err != nil {
		http.Error(w, MsgInvalidJSON, http.StatusBadRequest)
		return
	}
	redirect := service.SafeRedirect(r.PostForm.Get("redirect"), service.DefaultLoginRedirect)

	if _, err := h.service(w, r).Login(r.Context(), input); err != nil {
		delete(echo, "password")
		h.render.Render(w, r, http.StatusBadRequest, "login", pageData{
			Title: "로그인",
			Error: h.formError(err, service.MsgLoginFailed),
			Form:  echo,
			Data:  loginPage{Redirect: redirect, GitHub: h.github != nil},
		})
		return
	}

	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

type signUpPage struct {
	Sent  bool
	Email string
}

// HandleSignUpPage handles GET /auth/signup
func (h *AuthHandler) HandleSignUpPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "signup", pageData{Title: "회원가입", Data: signUpPage{}})
}

// HandleSignUp handles POST /auth/signup. With email confirmation on, the
// page switches to the "check your inbox" state instead of signing in.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	input, echo, err := formInput(w, r, "email", "password", "confirmPassword")
	if err != nil {
		http.Error(w, MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	res, err := h.service(w, r).SignUp(r.Context(), input, "")
	if err != nil {
		h.render.Render(w, r, http.StatusBadRequest, "signup", pageData{
			Title: "회원가입",
			Error: h.formError(err, service.MsgSignUpFailed),
			Form:  map[string]string{"email": echo["email"]},
			Data:  signUpPage{},
		})
		return
	}

	if res.SessionStarted {
		http.Redirect(w, r, service.DefaultLoginRedirect, http.StatusSeeOther)
		return
	}
	h.render.Render(w, r, http.StatusOK, "signup", pageData{
		Title: "회원가입",
		Data:  signUpPage{Sent: true, Email: res.User.Email},
	})
}

// HandleLogout handles POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service(w, r).Logout(r.Context()); err != nil {
		h.logger.Warn("logout failed", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleCallback handles GET /auth/callback?code=&next=, the landing page of
// confirmation emails.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.service(w, r).Callback(r.Context(), q.Get("code")); err != nil {
		http.Redirect(w, r, loginFailedURL(), http.StatusTemporaryRedirect)
		return
	}
	http.Redirect(w, r, service.SafeRedirect(q.Get("next"), "/"), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) oauthCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// HandleGitHubLogin handles GET /auth/github/login?redirect=
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		h.render.NotFound(w, r, "")
		return
	}

	state := xid.New().String()
	redirect := service.SafeRedirect(r.URL.Query().Get("redirect"), service.DefaultLoginRedirect)

	http.SetCookie(w, h.oauthCookie(stateCookie, state, oauthCookieAge))
	http.SetCookie(w, h.oauthCookie(redirectCookie, url.QueryEscape(redirect), oauthCookieAge))
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback handles GET /auth/github/callback
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		h.render.NotFound(w, r, "")
		return
	}

	q := r.URL.Query()
	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" || q.Get("state") != state.Value {
		h.logger.Warn("github callback: state mismatch")
		http.Redirect(w, r, loginFailedURL(), http.StatusSeeOther)
		return
	}

	redirect := service.DefaultLoginRedirect
	if c, err := r.Cookie(redirectCookie); err == nil {
		if v, err := url.QueryUnescape(c.Value); err == nil {
			redirect = service.SafeRedirect(v, redirect)
		}
	}
	http.SetCookie(w, h.oauthCookie(stateCookie, "", -1))
	http.SetCookie(w, h.oauthCookie(redirectCookie, "", -1))

	if e := q.Get("error"); e != "" {
		h.logger.Info("github callback: authorization denied", slog.String("error", e))
		http.Redirect(w, r, loginFailedURL(), http.StatusSeeOther)
		return
	}

	gh, err := h.github.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		http.Redirect(w, r, loginFailedURL(), http.StatusSeeOther)
		return
	}

	if _, err := h.service(w, r).SignInWithGitHub(r.Context(), gh); err != nil {
		http.Redirect(w, r, loginFailedURL(), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (h *AuthHandler) formError(err error, fallback string) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
