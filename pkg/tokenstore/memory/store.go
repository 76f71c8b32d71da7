// Package tokenstorememory keeps the session credentials in process memory.
// Useful for long-running consumers that log in on start-up and never need the
// tokens to survive a restart.
package tokenstorememory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/openkcm/taskmanager-client/pkg/tokenstore"
)

const cleanupInterval = 10 * time.Minute

type Store struct {
	cache *cache.Cache
}

var _ = tokenstore.Store(&Store{})

// NewStore creates a store whose entries expire after ttl. A ttl of zero
// keeps entries until they are deleted.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	return &Store{
		cache: cache.New(ttl, cleanupInterval),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", tokenstore.ErrNotFound
	}

	//nolint:forcetypeassert
	return v.(string), nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.cache.SetDefault(key, value)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
