// Package config loads runtime configuration from the environment via viper.
// Every setting has a TUKANO_-prefixed environment variable; nested keys map
// dots to underscores (redis.address → TUKANO_REDIS_ADDRESS).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "TUKANO"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultDatabasePath = "data/tukano.db"
	defaultBlobDir      = "data/blobs"
	defaultLogLevel     = "info"
)

// AppConfig captures runtime configuration for the API server.
//
// RedisAddress may be empty: the server then falls back to the in-process
// cache, which preserves all caching semantics for a single instance.
type AppConfig struct {
	HTTPAddress   string
	DatabasePath  string
	RedisAddress  string
	RedisPassword string
	BlobDir       string
	BlobBaseURL   string
	TokenSecret   string
	LogLevel      string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on the provided viper
// instance.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.address", defaultHTTPAddress)
	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("blob.dir", defaultBlobDir)
	v.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper.
func Load(v *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:   v.GetString("http.address"),
		DatabasePath:  v.GetString("database.path"),
		RedisAddress:  v.GetString("redis.address"),
		RedisPassword: v.GetString("redis.password"),
		BlobDir:       v.GetString("blob.dir"),
		BlobBaseURL:   v.GetString("blob.base_url"),
		TokenSecret:   v.GetString("token.secret"),
		LogLevel:      v.GetString("log.level"),
	}

	if cfg.BlobBaseURL == "" {
		cfg.BlobBaseURL = fmt.Sprintf("http://%s/rest/blobs", cfg.HTTPAddress)
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// minTokenSecretLen mirrors the floor auth.NewTokenService enforces, so a
// short secret is reported here with the other settings instead of failing
// later during server wiring.
const minTokenSecretLen = 16

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.TokenSecret) == "" {
		return fmt.Errorf("token.secret is required")
	}
	if len(c.TokenSecret) < minTokenSecretLen {
		return fmt.Errorf("token.secret must be at least %d characters", minTokenSecretLen)
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.BlobDir) == "" {
		return fmt.Errorf("blob.dir is required")
	}
	return nil
}
