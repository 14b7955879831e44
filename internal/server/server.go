// Package server wires the router, middleware and handlers together and runs
// the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/backend"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/middleware"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/web"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and the backend factory. The factory is closed when
// the server stops.
type Server struct {
	router      *chi.Mux
	config      *config.Config
	factory     *backend.Factory
	unsubscribe func()
	logger      *slog.Logger
}

// New builds the router. github may be nil to turn GitHub sign-in off.
func New(cfg *config.Config, factory *backend.Factory, github handler.GitHubAuth, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		factory: factory,
		logger:  logger,
	}

	s.unsubscribe = factory.Events().Subscribe(func(ev backend.Event) {
		logger.Info("auth event",
			slog.String("type", string(ev.Type)),
			slog.String("userID", ev.User.ID),
			slog.Time("at", ev.At),
		)
	})

	if err := s.setupRoutes(github); err != nil {
		s.unsubscribe()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(github handler.GitHubAuth) error {
	normalizer := apperror.Normalizer{Debug: !s.config.Production()}
	site := content.Default()
	site.Site.URL = s.config.SiteURL

	renderer, err := handler.NewRenderer(web.Files, site.Site, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	static, err := fs.Sub(web.Files, "static")
	if err != nil {
		return fmt.Errorf("opening static files: %w", err)
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/health", handler.HandleHealth)
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	contact := service.NewContactService(s.logger)
	pages := handler.NewPageHandler(s.factory, site, renderer, contact, normalizer, s.logger)
	authHandler := handler.NewAuthHandler(s.factory, github, renderer, normalizer, s.config.Production(), s.logger)
	posts := handler.NewPostHandler(s.factory, normalizer, s.logger)
	profiles := handler.NewProfileHandler(s.factory, normalizer, s.logger)
	contactAPI := handler.NewContactHandler(contact, normalizer, s.logger)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.SessionGate(s.factory, s.logger))

		r.Get("/", pages.HandleHome)
		r.Get("/about", pages.HandleAbout)
		r.Get("/experience", pages.HandleExperience)
		r.Get("/projects", pages.HandleProjects)
		r.Get("/projects/{id}", pages.HandleProject)
		r.Get("/posts", pages.HandlePosts)
		r.Get("/posts/new", pages.HandleNewPost)
		r.Post("/posts/new", pages.HandleCreatePost)
		r.Get("/posts/{id}", pages.HandlePost)
		r.Get("/qna", pages.HandleQnA)
		r.Get("/qna/{id}", pages.HandleQuestion)
		r.Get("/contact", pages.HandleContact)
		r.Post("/contact", pages.HandleContactSubmit)
		r.Get("/dashboard", pages.HandleDashboard)
		r.Get("/profile", pages.HandleProfile)
		r.Post("/profile", pages.HandleProfileUpdate)

		r.Get("/auth/login", authHandler.HandleLoginPage)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/signup", authHandler.HandleSignUpPage)
		r.Post("/auth/signup", authHandler.HandleSignUp)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Get("/auth/callback", authHandler.HandleCallback)
		r.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   s.corsOrigins(),
				AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
				AllowCredentials: true,
				MaxAge:           300,
			}))

			r.Post("/contact", contactAPI.HandleSubmit)

			r.Get("/posts", posts.HandleList)
			r.Post("/posts", posts.HandleCreate)
			r.Delete("/posts", posts.HandleDelete)
			r.Get("/posts/{id}", posts.HandleGet)
			r.Patch("/posts/{id}", posts.HandleUpdate)

			r.Get("/profiles", profiles.HandleList)
			r.Get("/profiles/me", profiles.HandleMe)
			r.Patch("/profiles/me", profiles.HandleUpdateMe)
			r.Delete("/profiles/me", profiles.HandleDeleteMe)
			r.Get("/profiles/{id}", profiles.HandleGet)
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderer.NotFound(w, r, "")
	})

	return nil
}

// corsOrigins defaults to the site's own origin.
func (s *Server) corsOrigins() []string {
	if len(s.config.CORSAllowedOrigins) > 0 {
		return s.config.CORSAllowedOrigins
	}
	return []string{s.config.SiteURL}
}

// Close releases the event subscription and the backend.
func (s *Server) Close() error {
	s.unsubscribe()
	return s.factory.Close()
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("closing backend", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", s.config.SiteURL),
			slog.Bool("backendConfigured", s.factory.Configured()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
