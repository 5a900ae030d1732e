// Package config loads SDK configuration from the environment.
//
// A .env file in the working directory is honoured when present (developer
// convenience); real environments set variables directly.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// APIBaseURL selects the target marketplace API host. This is the only
	// externally tunable routing parameter in this layer.
	APIBaseURL string `env:"STOREFRONT_API_URL, default=http://localhost:8000/api/v2"`
	// MediaUploadURL is the third-party endpoint binary uploads go to
	// directly, bypassing the marketplace API.
	MediaUploadURL string `env:"STOREFRONT_MEDIA_URL, default=http://localhost:8000/upload"`
	Env            string `env:"STOREFRONT_ENV,       default=development"`
	LogLevel       string `env:"LOG_LEVEL,            default=info"`

	// HTTPTimeout bounds every request issued by the transport client.
	HTTPTimeout time.Duration `env:"STOREFRONT_HTTP_TIMEOUT, default=30s"`
	// GraceTimer is how long the auth reconciler tolerates a pending profile
	// load before forcing a terminal decision.
	GraceTimer time.Duration `env:"STOREFRONT_GRACE_TIMER, default=8s"`

	Storage StorageConfig
}

// StorageConfig selects the durable client-storage backend for persisted
// identity slices. Backend is "file", "redis", or "memory"; an unreachable
// backend silently degrades to memory.
type StorageConfig struct {
	Backend string `env:"STOREFRONT_STORAGE,      default=file"`
	Dir     string `env:"STOREFRONT_STORAGE_DIR,  default=.storefront"`
	Redis   RedisConfig
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from the environment using go-envconfig.
func Load() *Config {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
