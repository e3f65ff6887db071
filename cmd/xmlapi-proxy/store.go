package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/eve-xmlapi-client/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// backend is an opened cache store plus its lifecycle hooks.
type backend struct {
	store cache.Store
	// sweep runs periodic maintenance until ctx is done; nil when the
	// backend expires entries on its own.
	sweep func(ctx context.Context) error
	close func() error
}

// openBackend opens the configured cache store.
func openBackend(ctx context.Context, cfg Config, logger zerolog.Logger) (*backend, error) {
	switch cfg.CacheBackend {
	case backendRedis:
		opts, err := redisOptions(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
		}
		logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")

		return &backend{
			store: cache.NewRedisStore(redisClient, logger.With().Str("component", "cache-redis").Logger()),
			close: redisClient.Close,
		}, nil

	default:
		store, err := cache.OpenSQLite(ctx, cfg.SQLitePath, logger.With().Str("component", "cache-sqlite").Logger())
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("Opened SQLite cache")

		return &backend{
			store: store,
			sweep: func(ctx context.Context) error {
				return sweepLoop(ctx, store, cfg.SweepInterval, logger)
			},
			close: store.Close,
		}, nil
	}
}

// redisOptions accepts either a redis:// URL or a bare host:port.
func redisOptions(raw string) (*redis.Options, error) {
	if strings.Contains(raw, "://") {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: raw}, nil
}

// sweepLoop reclaims expired SQLite rows every interval until ctx is done.
func sweepLoop(ctx context.Context, store *cache.SQLiteStore, interval time.Duration, logger zerolog.Logger) error {
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := store.Sweep(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("Cache sweep failed")
				continue
			}
			logger.Info().Int64("removed", n).Msg("Cache sweep complete")
		}
	}
}
