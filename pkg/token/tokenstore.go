package tokenstore

import (
	"context"
	"time"

	"cofounder/pkg/cache"
)

// RevocationStore remembers the jti of signed-out tokens until they would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryStore keeps revocations in process. Suitable for a single server instance.
type MemoryStore struct {
	c *cache.Cache[struct{}]
}

func NewMemoryStore(maxItems int) *MemoryStore {
	return &MemoryStore{c: cache.New[struct{}](maxItems, time.Minute)}
}

func (s *MemoryStore) Revoke(_ context.Context, jti string, until time.Time) error {
	if jti == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		// already expired, nothing to remember
		return nil
	}
	s.c.Set(jti, struct{}{}, ttl)
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, ok := s.c.Get(jti)
	return ok, nil
}

// Close stops the expiry janitor.
func (s *MemoryStore) Close() {
	s.c.Close()
}
