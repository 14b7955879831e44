package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/backend"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/repository/sqlite"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T, vars map[string]string) *Server {
	t.Helper()

	cfg, err := config.FromMap(vars)
	require.NoError(t, err)

	deps := backend.Deps{Logger: discard(), Passwords: auth.NewPasswordServiceWithCost(bcrypt.MinCost)}
	if cfg.Backend().Configured() {
		store, err := sqlite.New(":memory:")
		require.NoError(t, err)
		deps.Store = store
		deps.Refresh = backend.NewMemoryRefreshStore()
	}

	factory, err := backend.NewFactory(cfg.Backend(), deps)
	require.NoError(t, err)

	srv, err := New(cfg, factory, nil, discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

// browser carries cookies between requests the way a browser would.
type browser struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	return &browser{t: t, h: h, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", contentType)
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for _, c := range b.cookies {
		r.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, r)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, "", "")
}

func (b *browser) form(target string, values url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, target, "application/x-www-form-urlencoded", values.Encode())
}

func (b *browser) json(method, target, body string) *httptest.ResponseRecorder {
	return b.do(method, target, "application/json", body)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func TestServer_Unconfigured(t *testing.T) {
	b := newBrowser(t, newServer(t, map[string]string{}).Handler())

	assert.Equal(t, http.StatusOK, b.get("/health").Code)

	home := b.get("/")
	assert.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), "주요 프로젝트")

	rec := b.get("/dashboard")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, b.get("/auth/login").Code)

	rec = b.json(http.MethodPost, "/api/posts", `{"title":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = b.get("/api/posts")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	assert.Equal(t, http.StatusNotFound, b.get("/nowhere").Code)
}

func TestServer_AccountAndPostsFlow(t *testing.T) {
	srv := newServer(t, map[string]string{
		"BACKEND_URL":              "sqlite://:memory:",
		"BACKEND_ANON_KEY":         "anon",
		"BACKEND_SERVICE_ROLE_KEY": "service",
		"BACKEND_JWT_SECRET":       "integration-secret-0123456789",
		"BACKEND_AUTO_CONFIRM":     "true",
	})
	b := newBrowser(t, srv.Handler())

	rec := b.get("/dashboard")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/login?redirect=%2Fdashboard", rec.Header().Get("Location"))

	rec = b.form("/auth/signup", url.Values{
		"email":           {"writer@example.com"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.Contains(t, b.cookies, backend.AccessCookie)

	assert.Equal(t, http.StatusOK, b.get("/dashboard").Code)

	rec = b.get("/auth/login")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = b.json(http.MethodPost, "/api/posts", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decode(t, rec)["code"])

	rec = b.json(http.MethodPost, "/api/posts", `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, "제목을 입력해주세요.", body["error"])

	rec = b.json(http.MethodPost, "/api/posts", `{"title":"  첫 글  ","content":"안녕하세요","category":"daily"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "첫 글", post["title"])
	assert.Equal(t, "writer", post["author_name"])
	id := post["id"].(string)

	rec = b.get("/api/posts?category=daily")
	require.Equal(t, http.StatusOK, rec.Code)
	pagination := decode(t, rec)["data"].(map[string]any)["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["total"])
	assert.Equal(t, float64(1), pagination["totalPages"])

	rec = b.json(http.MethodPatch, "/api/posts/"+id, `{"content":"수정됨"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	page := b.get("/posts/" + id)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "수정됨")

	rec = b.json(http.MethodPatch, "/api/profiles/me", `{"username":"writer","id":"someone-else"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "writer", decode(t, rec)["data"].(map[string]any)["username"])

	rec = b.do(http.MethodDelete, "/api/posts?id="+id, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "게시글이 삭제되었습니다.", decode(t, rec)["data"].(map[string]any)["message"])

	rec = b.get("/api/profiles/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Profile not found"}`, rec.Body.String())

	rec = b.do(http.MethodDelete, "/api/profiles/me", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "User deleted successfully", decode(t, rec)["message"])

	rec = b.get("/api/profiles/me")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Unauthorized"}`, rec.Body.String())
}

func TestServer_AnonymousCannotWrite(t *testing.T) {
	srv := newServer(t, map[string]string{
		"BACKEND_URL":        "sqlite://:memory:",
		"BACKEND_ANON_KEY":   "anon",
		"BACKEND_JWT_SECRET": "integration-secret-0123456789",
	})
	b := newBrowser(t, srv.Handler())

	rec := b.json(http.MethodPost, "/api/posts", `{"title":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"로그인이 필요합니다.","code":"UNAUTHORIZED"}`, rec.Body.String())

	rec = b.json(http.MethodPost, "/api/contact", `{"name":"","email":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]any)
	assert.Len(t, errs, 4)

	rec = b.get("/posts/new")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
