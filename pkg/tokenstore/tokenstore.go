// Package tokenstore defines the persistent client-side storage used to keep
// the session credentials between invocations.
package tokenstore

import (
	"context"

	"github.com/openkcm/taskmanager-client/internal/serviceerr"
)

// Keys under which the session credentials are persisted.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Store reads and writes string values by key. Implementations return
// ErrNotFound from Get when the key is absent. Every operation on a
// single key is atomic.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ErrNotFound is returned by Store.Get for absent keys.
var ErrNotFound = serviceerr.ErrNotFound
