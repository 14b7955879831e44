package backend

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRefreshTokenNotFound is returned by RefreshStore.Consume for a token that
// was never issued, has expired, was revoked, or was used longer ago than
// RefreshReuseWindow.
var ErrRefreshTokenNotFound = errors.New("backend: refresh token not found")

// ErrRefreshTokenReused is returned together with the token's record when the
// token was consumed less than RefreshReuseWindow ago. It is how a request that
// lost a rotation race to a concurrent request from the same browser still
// resolves the user.
var ErrRefreshTokenReused = errors.New("backend: refresh token already rotated")

// RefreshReuseWindow is how long a consumed refresh token keeps resolving to
// its session.
//
// A page load fires several requests at once, all carrying the same cookies.
// When the access token has just expired every one of them tries to rotate.
// Only the first wins; without a grace period the others would see a spent
// token and sign the user out.
const RefreshReuseWindow = 10 * time.Second

// RefreshRecord is what a refresh token stands for.
type RefreshRecord struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// RefreshStore keeps server-side refresh tokens. Tokens are single use:
// Consume removes the token it returns, though it keeps answering with
// ErrRefreshTokenReused for RefreshReuseWindow afterwards.
type RefreshStore interface {
	Save(ctx context.Context, token string, rec RefreshRecord, ttl time.Duration) error
	Consume(ctx context.Context, token string) (RefreshRecord, error)
	// Revoke drops token outright, with no reuse window. Unknown tokens are
	// not an error.
	Revoke(ctx context.Context, token string) error
	// RevokeUser drops every token issued to userID.
	RevokeUser(ctx context.Context, userID string) error
	Close() error
}

type memoryEntry struct {
	rec     RefreshRecord
	expires time.Time
}

// MemoryRefreshStore is a RefreshStore for a single process. Tokens are lost
// on restart, which signs everyone out.
type MemoryRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]memoryEntry
	spent  map[string]memoryEntry
	byUser map[string]map[string]struct{}
	now    func() time.Time
}

func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{
		tokens: make(map[string]memoryEntry),
		spent:  make(map[string]memoryEntry),
		byUser: make(map[string]map[string]struct{}),
		now:    time.Now,
	}
}

func (s *MemoryRefreshStore) Save(_ context.Context, token string, rec RefreshRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = memoryEntry{rec: rec, expires: s.now().Add(ttl)}
	if s.byUser[rec.UserID] == nil {
		s.byUser[rec.UserID] = make(map[string]struct{})
	}
	s.byUser[rec.UserID][token] = struct{}{}
	return nil
}

func (s *MemoryRefreshStore) Consume(_ context.Context, token string) (RefreshRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneSpent(now)

	if e, ok := s.spent[token]; ok {
		return e.rec, ErrRefreshTokenReused
	}

	e, ok := s.tokens[token]
	if !ok {
		return RefreshRecord{}, ErrRefreshTokenNotFound
	}
	s.forget(token, e.rec.UserID)
	if !now.Before(e.expires) {
		return RefreshRecord{}, ErrRefreshTokenNotFound
	}

	s.spent[token] = memoryEntry{rec: e.rec, expires: now.Add(RefreshReuseWindow)}
	return e.rec, nil
}

func (s *MemoryRefreshStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.spent, token)
	if e, ok := s.tokens[token]; ok {
		s.forget(token, e.rec.UserID)
	}
	return nil
}

func (s *MemoryRefreshStore) RevokeUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token := range s.byUser[userID] {
		delete(s.tokens, token)
	}
	delete(s.byUser, userID)

	for token, e := range s.spent {
		if e.rec.UserID == userID {
			delete(s.spent, token)
		}
	}
	return nil
}

// Close is a no-op.
func (s *MemoryRefreshStore) Close() error { return nil }

func (s *MemoryRefreshStore) forget(token, userID string) {
	delete(s.tokens, token)
	if set := s.byUser[userID]; set != nil {
		delete(set, token)
		if len(set) == 0 {
			delete(s.byUser, userID)
		}
	}
}

func (s *MemoryRefreshStore) pruneSpent(now time.Time) {
	for token, e := range s.spent {
		if !now.Before(e.expires) {
			delete(s.spent, token)
		}
	}
}
