package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/backend"
	"github.com/sakif/portfolio/internal/model"
)

const (
	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
)

var (
	// ProtectedPaths need a session.
	ProtectedPaths = []string{"/dashboard", "/profile"}
	// AuthOnlyPaths are only for visitors without a session.
	AuthOnlyPaths = []string{"/auth/login", "/auth/signup"}
)

// Sessions is what the gate needs from the backend factory.
type Sessions interface {
	backend.RequestClients
	Configured() bool
}

type userKey struct{}

// UserFromContext returns the identity the gate resolved, nil when anonymous.
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey{}).(*model.User)
	return u
}

// WithUser attaches u to ctx the way the gate does.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// SessionGate resolves the session on every request, refreshing cookies when
// the access token has expired, and redirects between the protected pages and
// the login and sign-up pages.
//
// Without a configured backend nothing can be resolved: protected pages go to
// the login page and everything else passes through untouched.
func SessionGate(sessions Sessions, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if !sessions.Configured() {
				if matches(path, ProtectedPaths) {
					http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			client := sessions.ForRequest(w, r)
			user, err := client.Auth.GetUser(r.Context())
			if err != nil {
				apperror.Log(logger, "session gate", err)
				user = nil
			}

			switch {
			case user == nil && matches(path, ProtectedPaths):
				http.Redirect(w, r, LoginPath+"?redirect="+url.QueryEscape(path), http.StatusTemporaryRedirect)
				return
			case user != nil && matches(path, AuthOnlyPaths):
				http.Redirect(w, r, DashboardPath, http.StatusTemporaryRedirect)
				return
			}

			ctx := backend.WithClient(r.Context(), client)
			ctx = WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// matches reports whether path is one of prefixes or below one.
func matches(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
