// Package tokenstorevalkey keeps the session credentials in Valkey so several
// clients on different hosts can share one login.
package tokenstorevalkey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/openkcm/taskmanager-client/pkg/tokenstore"
)

const objectTypeToken = "token"

var (
	ErrGetToken    = errors.New("getting token from store")
	ErrSetToken    = errors.New("setting token into storage")
	ErrDeleteToken = errors.New("deleting token from store")
)

type Store struct {
	valkey valkey.Client
	prefix string
	ttl    time.Duration
}

var _ = tokenstore.Store(&Store{})

type Option func(*Store)

// WithTTL expires stored tokens after the given duration. Zero keeps them
// until they are deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

func NewStore(valkeyClient valkey.Client, prefix string, opts ...Option) *Store {
	prefix = strings.TrimSuffix(prefix, ":")
	s := &Store{
		valkey: valkeyClient,
		prefix: prefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.valkey.Do(ctx, s.valkey.B().Get().Key(s.key(key)).Build()).ToString()
	if err != nil {
		valkeyErr, ok := valkey.IsValkeyErr(err)
		if ok && valkeyErr.IsNil() {
			return "", tokenstore.ErrNotFound
		}

		return "", errors.Join(ErrGetToken, err)
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	var cmd valkey.Completed
	if s.ttl > 0 {
		cmd = s.valkey.B().Set().Key(s.key(key)).Value(value).ExSeconds(int64(s.ttl.Seconds())).Build()
	} else {
		cmd = s.valkey.B().Set().Key(s.key(key)).Value(value).Build()
	}

	if err := s.valkey.Do(ctx, cmd).Error(); err != nil {
		return errors.Join(ErrSetToken, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.valkey.Do(ctx, s.valkey.B().Del().Key(s.key(key)).Build()).Error(); err != nil {
		return errors.Join(ErrDeleteToken, err)
	}

	return nil
}

func (s *Store) key(key string) string {
	if s.prefix == "" {
		return fmt.Sprintf("%s:%s", objectTypeToken, key)
	}

	return fmt.Sprintf("%s:%s:%s", s.prefix, objectTypeToken, key)
}
