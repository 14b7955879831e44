// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/sakif/portfolio/internal/backend"
)

const EnvProduction = "production"

type Config struct {
	Port     int    `env:"PORT" envDefault:"3000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	SiteURL  string `env:"SITE_URL" envDefault:"http://localhost:3000"`

	BackendURL            string        `env:"BACKEND_URL" envDefault:"sqlite://data/portfolio.db"`
	BackendAnonKey        string        `env:"BACKEND_ANON_KEY"`
	BackendServiceRoleKey string        `env:"BACKEND_SERVICE_ROLE_KEY"`
	BackendJWTSecret      string        `env:"BACKEND_JWT_SECRET"`
	BackendAutoConfirm    bool          `env:"BACKEND_AUTO_CONFIRM" envDefault:"false"`
	BackendDisableSignup  bool          `env:"BACKEND_DISABLE_SIGNUP" envDefault:"false"`
	AccessTokenTTL        time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL       time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `env:"GITHUB_CALLBACK_URL"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads an optional .env file from the working directory, then the
// process environment. Variables already set win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}
	return parse(env.Options{})
}

// FromMap builds a Config from vars alone, ignoring the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = cfg.SiteURL + "/auth/github/callback"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	if c.SMTPEnabled() && c.SMTPFrom == "" {
		return errors.New("config: SMTP_FROM is required when SMTP_HOST is set")
	}
	return nil
}

func (c *Config) Production() bool {
	return c.AppEnv == EnvProduction
}

// GitHubEnabled reports whether GitHub sign-in has credentials.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// SMTPEnabled reports whether confirmation emails go out over SMTP. Without
// it they are only logged.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) SMTP() backend.SMTPConfig {
	return backend.SMTPConfig{
		Host:        c.SMTPHost,
		Port:        c.SMTPPort,
		Username:    c.SMTPUsername,
		Password:    c.SMTPPassword,
		From:        c.SMTPFrom,
		FromName:    c.SMTPFromName,
		ImplicitTLS: c.SMTPUseTLS,
	}
}

// Backend maps the environment onto the embedded backend's settings.
func (c *Config) Backend() backend.Config {
	return backend.Config{
		URL:            c.BackendURL,
		AnonKey:        c.BackendAnonKey,
		ServiceRoleKey: c.BackendServiceRoleKey,
		JWTSecret:      c.BackendJWTSecret,
		AccessTTL:      c.AccessTokenTTL,
		RefreshTTL:     c.RefreshTokenTTL,
		AutoConfirm:    c.BackendAutoConfirm,
		DisableSignup:  c.BackendDisableSignup,
		SecureCookies:  c.Production(),
		SiteURL:        c.SiteURL,
	}
}

func (c *Config) Redis() backend.RedisOptions {
	return backend.RedisOptions{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// ParseLevel maps LOG_LEVEL onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
