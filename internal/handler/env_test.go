package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/backend"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/middleware"
	"github.com/sakif/portfolio/internal/repository/sqlite"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/web"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires the handlers to a real backend over an in-memory SQLite
// store, behind the same session gate the server uses.
type testEnv struct {
	t       *testing.T
	factory *backend.Factory
	router  chi.Router
}

type envOptions struct {
	serviceKey string
	github     GitHubAuth
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)

	logger := discardLogger()
	factory, err := backend.NewFactory(backend.Config{
		URL:            "sqlite://:memory:",
		AnonKey:        "anon",
		ServiceRoleKey: opts.serviceKey,
		JWTSecret:      "handler-test-secret-0123456789",
		SiteURL:        "http://localhost:3000",
		AutoConfirm:    true,
	}, backend.Deps{
		Store:     store,
		Refresh:   backend.NewMemoryRefreshStore(),
		Passwords: auth.NewPasswordServiceWithCost(bcrypt.MinCost),
		Logger:    logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { factory.Close() })

	site := content.Default()
	renderer, err := NewRenderer(web.Files, site.Site, logger)
	require.NoError(t, err)

	normalizer := apperror.Normalizer{}
	contact := service.NewContactService(logger)
	pages := NewPageHandler(factory, site, renderer, contact, normalizer, logger)
	authHandler := NewAuthHandler(factory, opts.github, renderer, normalizer, false, logger)
	posts := NewPostHandler(factory, normalizer, logger)
	profiles := NewProfileHandler(factory, normalizer, logger)
	contactAPI := NewContactHandler(contact, normalizer, logger)

	r := chi.NewRouter()
	r.Use(middleware.SessionGate(factory, logger))

	r.Get("/", pages.HandleHome)
	r.Get("/projects/{id}", pages.HandleProject)
	r.Get("/qna/{id}", pages.HandleQuestion)
	r.Get("/posts", pages.HandlePosts)
	r.Get("/posts/new", pages.HandleNewPost)
	r.Post("/posts/new", pages.HandleCreatePost)
	r.Get("/posts/{id}", pages.HandlePost)
	r.Post("/contact", pages.HandleContactSubmit)
	r.Get("/profile", pages.HandleProfile)
	r.Post("/profile", pages.HandleProfileUpdate)

	r.Get("/auth/login", authHandler.HandleLoginPage)
	r.Post("/auth/login", authHandler.HandleLogin)
	r.Post("/auth/signup", authHandler.HandleSignUp)
	r.Post("/auth/logout", authHandler.HandleLogout)
	r.Get("/auth/callback", authHandler.HandleCallback)
	r.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

	r.Post("/api/contact", contactAPI.HandleSubmit)
	r.Get("/api/posts", posts.HandleList)
	r.Post("/api/posts", posts.HandleCreate)
	r.Delete("/api/posts", posts.HandleDelete)
	r.Get("/api/posts/{id}", posts.HandleGet)
	r.Patch("/api/posts/{id}", posts.HandleUpdate)
	r.Get("/api/profiles", profiles.HandleList)
	r.Get("/api/profiles/me", profiles.HandleMe)
	r.Patch("/api/profiles/me", profiles.HandleUpdateMe)
	r.Delete("/api/profiles/me", profiles.HandleDeleteMe)
	r.Get("/api/profiles/{id}", profiles.HandleGet)

	return &testEnv{t: t, factory: factory, router: r}
}

// signUp registers email and returns the session cookies it was issued.
func (e *testEnv) signUp(email string) []*http.Cookie {
	e.t.Helper()
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	res, err := e.factory.ForRequest(rec, r).Auth.SignUp(context.Background(), email, "secret1", "")
	require.NoError(e.t, err)
	require.True(e.t, res.SessionStarted)
	return rec.Result().Cookies()
}

func (e *testEnv) do(method, target, contentType, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", contentType)
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, r)
	return rec
}

func (e *testEnv) json(method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return e.do(method, target, "application/json", body, cookies)
}

func (e *testEnv) form(target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, target, "application/x-www-form-urlencoded", body, cookies)
}
