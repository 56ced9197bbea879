package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v2"
)

// MemoryStore keeps revocations in process. Used when Redis is not configured; a
// restart forgets revocations, which only matters for tokens still within their TTL.
type MemoryStore struct {
	cache *ttlcache.Cache
}

func NewMemory() *MemoryStore {
	c := ttlcache.NewCache()
	c.SkipTTLExtensionOnHit(true)
	return &MemoryStore{cache: c}
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.SetWithTTL(tokenID, struct{}{}, ttl)
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, err := s.cache.Get(tokenID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ttlcache.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *MemoryStore) Close() error { return s.cache.Close() }
