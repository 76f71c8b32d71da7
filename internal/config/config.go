// Package config defines the necessary types to configure taskctl.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	API        API        `yaml:"api"`
	TokenStore TokenStore `yaml:"tokenStore"`
	ValKey     ValKey     `yaml:"valkey"`
	Watch      Watch      `yaml:"watch"`
}

type API struct {
	BaseURL     string        `yaml:"baseURL" default:"http://127.0.0.1:8000/api/"`
	Timeout     time.Duration `yaml:"timeout" default:"30s"`
	RefreshPath string        `yaml:"refreshPath" default:"token/refresh/"`
	UserAgent   string        `yaml:"userAgent" default:"taskctl"`
}

type TokenStoreType string

const (
	TokenStoreFile   TokenStoreType = "file"
	TokenStoreValKey TokenStoreType = "valkey"
	TokenStoreMemory TokenStoreType = "memory"
)

type TokenStore struct {
	Type TokenStoreType `yaml:"type" default:"file"`
	// Path of the token file. Environment variables are expanded.
	Path string `yaml:"path" default:"$HOME/.taskctl/tokens.json"`
	// TTL bounds the lifetime of stored tokens in the valkey and memory
	// stores. Zero keeps them until logout.
	TTL time.Duration `yaml:"ttl" default:"0s"`
}

type ValKey struct {
	Host      commoncfg.SourceRef `yaml:"host"`
	User      commoncfg.SourceRef `yaml:"user"`
	Password  commoncfg.SourceRef `yaml:"password"`
	Prefix    string              `yaml:"prefix" default:"taskctl"`
	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
}

type Watch struct {
	Interval time.Duration `yaml:"interval" default:"30s"`
}
