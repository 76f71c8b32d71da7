package business

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/taskmanager-client/internal/config"
	"github.com/openkcm/taskmanager-client/pkg/apiclient"
	"github.com/openkcm/taskmanager-client/pkg/session"
	"github.com/openkcm/taskmanager-client/pkg/tokenstore"
	tokenstorefile "github.com/openkcm/taskmanager-client/pkg/tokenstore/file"
	tokenstorememory "github.com/openkcm/taskmanager-client/pkg/tokenstore/memory"
	tokenstorevalkey "github.com/openkcm/taskmanager-client/pkg/tokenstore/valkey"
)

// WithClient builds an API client from the configuration, runs fn with it and
// releases the token store afterwards.
func WithClient(ctx context.Context, cfg *config.Config, fn func(context.Context, *apiclient.Client) error) error {
	client, closeFn, err := NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the api client: %w", err)
	}
	defer closeFn()

	return fn(ctx, client)
}

// NewClient builds the token store, session and API client described by the
// configuration. closeFn releases the token store.
func NewClient(ctx context.Context, cfg *config.Config) (_ *apiclient.Client, closeFn func(), _ error) {
	store, closeFn, err := tokenStoreFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token store: %w", err)
	}

	client, err := apiclient.New(
		cfg.API.BaseURL,
		session.New(store),
		apiclient.WithHTTPClient(loadHTTPClient(cfg)),
		apiclient.WithRefreshPath(cfg.API.RefreshPath),
		apiclient.WithUserAgent(cfg.API.UserAgent),
		apiclient.WithAuthExpiredHook(logAuthExpired),
	)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to create api client: %w", err)
	}

	slogctx.Debug(ctx, "API client ready", "base_url", cfg.API.BaseURL, "token_store", cfg.TokenStore.Type)

	return client, closeFn, nil
}

func tokenStoreFromConfig(cfg *config.Config) (_ tokenstore.Store, closeFn func(), _ error) {
	noop := func() {}

	switch cfg.TokenStore.Type {
	case config.TokenStoreFile, "":
		store, err := tokenstorefile.NewStore(cfg.TokenStore.Path)
		if err != nil {
			return nil, nil, err
		}

		return store, noop, nil
	case config.TokenStoreMemory:
		return tokenstorememory.NewStore(cfg.TokenStore.TTL), noop, nil
	case config.TokenStoreValKey:
		valkeyClient, err := valkeyClientFromConfig(cfg)
		if err != nil {
			return nil, nil, err
		}

		var opts []tokenstorevalkey.Option
		if cfg.TokenStore.TTL > 0 {
			opts = append(opts, tokenstorevalkey.WithTTL(cfg.TokenStore.TTL))
		}

		return tokenstorevalkey.NewStore(valkeyClient, cfg.ValKey.Prefix, opts...), valkeyClient.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store type %q", cfg.TokenStore.Type)
	}
}

func valkeyClientFromConfig(cfg *config.Config) (valkey.Client, error) {
	opts, err := config.MakeValKeyOptions(cfg.ValKey)
	if err != nil {
		return nil, err
	}

	valkeyClient, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	return valkeyClient, nil
}

func loadHTTPClient(cfg *config.Config) *http.Client {
	timeout := cfg.API.Timeout
	if timeout <= 0 {
		timeout = apiclient.DefaultTimeout
	}

	return &http.Client{Timeout: timeout}
}

func logAuthExpired(ctx context.Context, err *apiclient.AuthError) {
	if errors.Is(err, apiclient.ErrNoRefreshToken) {
		slogctx.Warn(ctx, "Not logged in, run taskctl login")
		return
	}

	slogctx.Warn(ctx, "Session expired, run taskctl login", "error", err.Err)
}
