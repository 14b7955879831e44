package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshKeyPrefix      = "refresh:"
	refreshSpentKeyPrefix = "refresh_spent:"
	refreshUserKeyPrefix  = "refresh_user:"
)

// redisKV is the part of *redis.Client the store uses.
type redisKV interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisRefreshStore keeps refresh tokens in Redis so sessions survive
// restarts and are shared between instances.
//
// Layout: "refresh:<token>" holds the JSON record with the token's TTL, and
// the set "refresh_user:<user id>" lists a user's live tokens for revocation.
// A consumed token leaves "refresh_spent:<token>" behind for
// RefreshReuseWindow. Spent markers are not indexed, so RevokeUser does not
// reach them; it is only used when the account itself is being deleted, and a
// marker for a deleted account resolves nobody.
type RedisRefreshStore struct {
	client redisKV
	logger *slog.Logger
}

// NewRedisRefreshStore wraps a connected client. The store owns it from here
// on and closes it in Close.
func NewRedisRefreshStore(client *redis.Client, logger *slog.Logger) *RedisRefreshStore {
	return &RedisRefreshStore{client: client, logger: logger}
}

func (s *RedisRefreshStore) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *RedisRefreshStore) Save(ctx context.Context, token string, rec RefreshRecord, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("backend: encoding refresh record: %w", err)
	}
	if err := s.client.Set(ctx, refreshKeyPrefix+token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("backend: saving refresh token: %w", err)
	}

	userKey := refreshUserKeyPrefix + rec.UserID
	if err := s.client.SAdd(ctx, userKey, token).Err(); err != nil {
		return fmt.Errorf("backend: indexing refresh token: %w", err)
	}
	// The index lives as long as the newest token.
	if err := s.client.Expire(ctx, userKey, ttl).Err(); err != nil {
		return fmt.Errorf("backend: setting refresh index TTL: %w", err)
	}
	return nil
}

func (s *RedisRefreshStore) Consume(ctx context.Context, token string) (RefreshRecord, error) {
	raw, err := s.client.GetDel(ctx, refreshKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.spent(ctx, token)
	}
	if err != nil {
		return RefreshRecord{}, fmt.Errorf("backend: consuming refresh token: %w", err)
	}

	var rec RefreshRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return RefreshRecord{}, fmt.Errorf("backend: decoding refresh record: %w", err)
	}

	// The token is already gone at this point, so the bookkeeping below only
	// gets logged when it fails.
	if err := s.client.Set(ctx, refreshSpentKeyPrefix+token, raw, RefreshReuseWindow).Err(); err != nil {
		s.log().Warn("refresh store: marking token spent", "user_id", rec.UserID, "error", err)
	}
	if err := s.client.SRem(ctx, refreshUserKeyPrefix+rec.UserID, token).Err(); err != nil {
		s.log().Warn("refresh store: removing token from user index", "user_id", rec.UserID, "error", err)
	}
	return rec, nil
}

// spent looks token up among recently consumed tokens.
func (s *RedisRefreshStore) spent(ctx context.Context, token string) (RefreshRecord, error) {
	raw, err := s.client.Get(ctx, refreshSpentKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return RefreshRecord{}, ErrRefreshTokenNotFound
		}
		return RefreshRecord{}, fmt.Errorf("backend: reading spent refresh token: %w", err)
	}

	var rec RefreshRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return RefreshRecord{}, fmt.Errorf("backend: decoding refresh record: %w", err)
	}
	return rec, ErrRefreshTokenReused
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, token string) error {
	raw, err := s.client.GetDel(ctx, refreshKeyPrefix+token).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("backend: revoking refresh token: %w", err)
	}
	if err := s.client.Del(ctx, refreshSpentKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("backend: revoking spent refresh token: %w", err)
	}

	if len(raw) > 0 {
		var rec RefreshRecord
		if err := json.Unmarshal(raw, &rec); err == nil {
			if err := s.client.SRem(ctx, refreshUserKeyPrefix+rec.UserID, token).Err(); err != nil {
				s.log().Warn("refresh store: removing token from user index", "user_id", rec.UserID, "error", err)
			}
		}
	}
	return nil
}

func (s *RedisRefreshStore) RevokeUser(ctx context.Context, userID string) error {
	userKey := refreshUserKeyPrefix + userID
	tokens, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("backend: listing refresh tokens: %w", err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, refreshKeyPrefix+t)
	}
	keys = append(keys, userKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("backend: revoking refresh tokens: %w", err)
	}
	return nil
}

func (s *RedisRefreshStore) Close() error {
	return s.client.Close()
}
