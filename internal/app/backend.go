package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/platform/cache"
	"github.com/kord-engine/kord/internal/platform/db"
)

// Backend is an opened persistence backend plus the shared Redis client,
// which is nil when Redis is unreachable and the backend does not need it.
type Backend struct {
	KV    inventory.KV
	Redis *redis.Client

	closers []func()
}

// Close releases every connection opened by OpenBackend.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// OpenBackend connects the store backend selected by STORE_BACKEND. Redis is
// always attempted because the analytics cache and job queue share it; only
// the redis backend treats an unreachable server as fatal.
func OpenBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}

	if cfg.StoreBackend != BackendMemory {
		client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
		switch {
		case err == nil:
			b.Redis = client
			b.closers = append(b.closers, func() {
				if err := client.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			})
		case cfg.StoreBackend == BackendRedis:
			return nil, err
		default:
			logger.Warn("redis unavailable, analytics cache disabled", slog.Any("error", err))
		}
	}

	switch cfg.StoreBackend {
	case BackendMemory:
		b.KV = inventory.NewMemoryKV()
	case BackendRedis:
		b.KV = inventory.NewRedisKV(b.Redis)
	case BackendPostgres:
		pool, err := db.NewPostgres(ctx, cfg.PGDSN, 4)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		kv, err := inventory.NewPostgresKV(ctx, pool)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.KV = kv
	case BackendSQLite:
		sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("sqlite close", slog.Any("error", err))
			}
		})
		kv, err := inventory.NewSQLKV(ctx, sqlDB)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.KV = kv
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	logger.Info("store backend ready",
		slog.String("backend", cfg.StoreBackend),
		slog.Bool("redis", b.Redis != nil))
	return b, nil
}
