package auth

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers token ids that were invalidated before
// their natural expiry
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocationStore keeps revoked ids as keys that expire together
// with the token
type RedisRevocationStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRedisRevocationStore(client redis.Cmdable) *RedisRevocationStore {
	return &RedisRevocationStore{
		client: client,
		prefix: "auth:revoked:",
		now:    time.Now,
	}
}

// WithPrefix overrides the key prefix
func (s *RedisRevocationStore) WithPrefix(prefix string) *RedisRevocationStore {
	s.prefix = prefix
	return s
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return nil
	}

	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, s.prefix+tokenID, "1", ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to revoke token").
			WithMetadata(map[string]any{"jti": tokenID})
	}
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}

	n, err := s.client.Exists(ctx, s.prefix+tokenID).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check token revocation")
	}
	return n > 0, nil
}

// MemoryRevocationStore is a process local RevocationStore
type MemoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}

	if until.After(now) {
		s.revoked[tokenID] = until
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	return exp.After(s.now()), nil
}
