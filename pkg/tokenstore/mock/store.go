package tokenstoremock

import (
	"context"
	"sync"

	"github.com/openkcm/taskmanager-client/pkg/tokenstore"
)

type StoreOption func(*Store)

type Store struct {
	mu     sync.Mutex
	values map[string]string
	sets   map[string]int

	getErr, setErr, deleteErr error
}

func WithValue(key, value string) StoreOption {
	return func(s *Store) { s.values[key] = value }
}
func WithTokens(access, refresh string) StoreOption {
	return func(s *Store) {
		s.values[tokenstore.KeyAccessToken] = access
		s.values[tokenstore.KeyRefreshToken] = refresh
	}
}
func WithGetError(err error) StoreOption {
	return func(s *Store) { s.getErr = err }
}
func WithSetError(err error) StoreOption {
	return func(s *Store) { s.setErr = err }
}
func WithDeleteError(err error) StoreOption {
	return func(s *Store) { s.deleteErr = err }
}

var _ = tokenstore.Store(&Store{})

func NewInMemStore(opts ...StoreOption) *Store {
	s := &Store{
		values: make(map[string]string),
		sets:   make(map[string]int),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", tokenstore.ErrNotFound
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	s.sets[key]++
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.values, key)
	return nil
}

// Value returns the stored value without going through the error injection.
func (s *Store) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// SetCount reports how many successful writes the key has received.
func (s *Store) SetCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[key]
}
