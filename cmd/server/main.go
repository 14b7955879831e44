// Package main is the entry point for the portfolio server.
//
// main stays small: it reads configuration, builds the logger and backend
// dependencies, then hands everything to internal/server. All request
// handling lives in the internal packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/backend"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// .env is optional; real environment variables override it.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Text logs while developing, JSON in production for the log collector.
	logger, err := newLogger(cfg)
	if err != nil {
		slog.Error("invalid LOG_LEVEL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// === 3. CONNECT THE BACKEND ===
	// Without BACKEND_URL and BACKEND_ANON_KEY the site still serves its
	// static pages; every data call reports the backend as not configured.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	deps, err := openDeps(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to connect backend", slog.String("error", err.Error()))
		os.Exit(1)
	}

	factory, err := backend.NewFactory(cfg.Backend(), deps)
	if err != nil {
		logger.Error("failed to create backend", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 4. AUTH PROVIDERS ===
	var github handler.GitHubAuth
	if cfg.GitHubEnabled() {
		github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	} else {
		logger.Warn("GITHUB_CLIENT_ID not set, GitHub sign-in is disabled")
	}

	// === 5. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, factory, github, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Production() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
}

func openDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend.Deps, error) {
	deps := backend.Deps{Logger: logger}
	if !cfg.Backend().Configured() {
		logger.Warn("backend not configured, data features are disabled")
		return deps, nil
	}

	// SQLite needs its directory to exist before the file can be created.
	if path, ok := strings.CutPrefix(cfg.BackendURL, "sqlite://"); ok && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return deps, err
		}
	}

	store, err := backend.OpenStore(ctx, cfg.BackendURL)
	if err != nil {
		return deps, err
	}
	refresh, err := backend.OpenRefreshStore(ctx, cfg.Redis(), logger)
	if err != nil {
		store.Close()
		return deps, err
	}

	deps.Store = store
	deps.Refresh = refresh

	if cfg.SMTPEnabled() {
		mailer, err := backend.NewSMTPMailer(cfg.SMTP())
		if err != nil {
			refresh.Close()
			store.Close()
			return deps, err
		}
		deps.Mailer = mailer
	} else if !cfg.BackendAutoConfirm {
		logger.Warn("SMTP_HOST not set, confirmation links are only logged")
	}
	return deps, nil
}
