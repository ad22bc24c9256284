// Package infra opens the external stores of the development backend.
package infra

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tipslap/tipslap/internal/config"
)

// Backends holds the optional stores. A nil field means the in-memory fallback is used.
type Backends struct {
	DB    *pgxpool.Pool
	Cache *redis.Client
}

// Open connects to every store configured in cfg. Unset URLs are skipped;
// config validation already rejects them outside development.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Backends, error) {
	var b Backends
	if cfg.DatabaseURL != "" {
		db, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return Backends{}, err
		}
		b.DB = db
	} else {
		logger.Warn("DATABASE_URL not set, users are kept in memory")
	}

	if cfg.RedisURL != "" {
		cache, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			b.Close()
			return Backends{}, err
		}
		b.Cache = cache
	} else {
		logger.Warn("REDIS_URL not set, codes are kept in memory and rate limiting is off")
	}
	return b, nil
}

// Close releases every open store.
func (b Backends) Close() error {
	var errs []error
	if b.Cache != nil {
		errs = append(errs, b.Cache.Close())
	}
	if b.DB != nil {
		b.DB.Close()
	}
	return errors.Join(errs...)
}
