// Package storage provides the durable client-side key-value persistence
// identity slices survive restarts through. Values are opaque JSON blobs
// keyed by a fixed storage name per store (e.g. "auth-storage").
package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/config"
	"github.com/vendora/storefront-go/domain"
)

// Store is a minimal durable KV. Load returns domain.ErrNotFound for a
// missing key. Implementations must be safe for concurrent use.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Open builds the configured backend. When the backend is unavailable
// (unwritable directory, unreachable Redis) it degrades to an in-memory
// store for the session instead of failing: persistence is a convenience,
// never a prerequisite.
func Open(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) Store {
	switch cfg.Backend {
	case "redis":
		s, err := OpenRedis(ctx, RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("redis storage unavailable, falling back to in-memory")
			return NewMemory()
		}
		return s
	case "memory":
		return NewMemory()
	default:
		s, err := OpenFile(cfg.Dir)
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.Dir).Msg("file storage unavailable, falling back to in-memory")
			return NewMemory()
		}
		return s
	}
}

// IsMissing reports whether err means the key simply was not there.
func IsMissing(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
