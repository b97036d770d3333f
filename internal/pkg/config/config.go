// Package config holds the CLI configuration.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Backend selects the Authentication Backend the session talks to.
const (
	BackendHTTP = "http"
	BackendMock = "mock"
)

// Storage selects where the session snapshot lives.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	Backend  string `env:"TALENTSPHERE_BACKEND, default=http"`
	Storage  string `env:"TALENTSPHERE_STORAGE, default=file"`
	LogLevel string `env:"LOG_LEVEL,            default=warn"`

	API   APIConfig
	File  FileConfig
	Redis RedisConfig
	Mock  MockConfig
}

type APIConfig struct {
	URL     string        `env:"TALENTSPHERE_API_URL,     default=http://localhost:8080"`
	Timeout time.Duration `env:"TALENTSPHERE_API_TIMEOUT, default=10s"`
}

// FileConfig.Path defaults to the user config directory when empty.
type FileConfig struct {
	Path string `env:"TALENTSPHERE_SESSION_FILE"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// MockConfig tunes the in-process backend.
type MockConfig struct {
	Latency time.Duration `env:"TALENTSPHERE_MOCK_LATENCY, default=0s"`
	Seed    bool          `env:"TALENTSPHERE_MOCK_SEED,    default=true"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l and validates the selectors.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch cfg.Backend {
	case BackendHTTP, BackendMock:
	default:
		return nil, fmt.Errorf("config: unknown backend %q", cfg.Backend)
	}
	switch cfg.Storage {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return nil, fmt.Errorf("config: unknown storage %q", cfg.Storage)
	}
	return &cfg, nil
}
