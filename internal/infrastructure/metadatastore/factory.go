package metadatastore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/infrastructure/configloader"
)

// New builds the store selected by cfg.Backend. The returned close func releases
// backend resources and is never nil.
func New(ctx context.Context, cfg configloader.MetadataStoreConfig, logger port.Logger) (port.MetadataStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "file":
		logger.Info("Using file metadata store", "dir", cfg.Dir)
		return NewFileStore(cfg.Dir), noop, nil
	case "memory":
		logger.Info("Using in-memory metadata store")
		return NewMemoryStore(), noop, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			rdb.Close()
			return nil, noop, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("Using redis metadata store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return NewRedisStore(rdb), rdb.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported metadata store backend %q", cfg.Backend)
	}
}
