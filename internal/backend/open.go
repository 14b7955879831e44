package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/portfolio/internal/repository"
	"github.com/sakif/portfolio/internal/repository/postgres"
	"github.com/sakif/portfolio/internal/repository/sqlite"
)

// OpenStore connects to the store named by rawURL:
//
//	sqlite://data/site.db   SQLite file at data/site.db
//	sqlite://:memory:       throwaway SQLite database
//	file:data/site.db       SQLite URI, passed to the driver as is
//	postgres://...          PostgreSQL (also postgresql://)
func OpenStore(ctx context.Context, rawURL string) (repository.Store, error) {
	switch {
	case strings.HasPrefix(rawURL, "sqlite://"):
		return sqlite.New(strings.TrimPrefix(rawURL, "sqlite://"))
	case strings.HasPrefix(rawURL, "file:"):
		return sqlite.New(rawURL)
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return postgres.New(ctx, rawURL)
	default:
		return nil, fmt.Errorf("backend: unsupported backend URL scheme in %q", rawURL)
	}
}

// RedisOptions locates the Redis server for refresh tokens.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// OpenRefreshStore returns a Redis-backed store when an address is given and
// an in-process store otherwise.
func OpenRefreshStore(ctx context.Context, opts RedisOptions, logger *slog.Logger) (RefreshStore, error) {
	if opts.Addr == "" {
		return NewMemoryRefreshStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("backend: connecting to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisRefreshStore(client, logger), nil
}
