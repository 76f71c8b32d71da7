package config

import (
	"fmt"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"
)

// MakeValKeyOptions resolves the valkey credentials into client options.
func MakeValKeyOptions(conf ValKey) (valkey.ClientOption, error) {
	host, err := commoncfg.LoadValueFromSourceRef(conf.Host)
	if err != nil {
		return valkey.ClientOption{}, fmt.Errorf("failed to load valkey host: %w", err)
	}

	user, err := commoncfg.LoadValueFromSourceRef(conf.User)
	if err != nil {
		return valkey.ClientOption{}, fmt.Errorf("failed to load valkey username: %w", err)
	}

	password, err := commoncfg.LoadValueFromSourceRef(conf.Password)
	if err != nil {
		return valkey.ClientOption{}, fmt.Errorf("failed to load valkey password: %w", err)
	}

	opts := valkey.ClientOption{
		InitAddress: []string{string(host)},
		Username:    string(user),
		Password:    string(password),
	}

	if conf.SecretRef.Type == commoncfg.MTLSSecretType {
		tlsConfig, err := commoncfg.LoadMTLSConfig(&conf.SecretRef.MTLS)
		if err != nil {
			return valkey.ClientOption{}, fmt.Errorf("failed to load valkey mTLS config from secret ref: %w", err)
		}

		opts.TLSConfig = tlsConfig
	}

	return opts, nil
}
