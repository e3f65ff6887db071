package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// DefaultNamespace prefixes every physical Redis key.
	DefaultNamespace = "evenado/cache"

	redisBackend = "redis"
)

// RedisStore is a Store backed by Redis. Expiry is delegated entirely to
// the native key TTL set at write time; there is no sweep.
//
// Physical keys have the form <namespace>/<silo>/<key>, with the silo
// path-escaped so a silo containing "/" cannot prefix another silo.
type RedisStore struct {
	redis     redis.UniversalClient
	namespace string
	logger    zerolog.Logger
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithNamespace overrides DefaultNamespace.
func WithNamespace(namespace string) RedisOption {
	return func(s *RedisStore) {
		s.namespace = strings.TrimRight(namespace, "/")
	}
}

// NewRedisStore creates a Redis backed store.
func NewRedisStore(redisClient redis.UniversalClient, logger zerolog.Logger, opts ...RedisOption) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	s := &RedisStore{
		redis:     redisClient,
		namespace: DefaultNamespace,
		logger:    logger.With().Str("backend", redisBackend).Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored body or ErrCacheMiss.
func (s *RedisStore) Get(ctx context.Context, silo, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.realKey(silo, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(redisBackend).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(redisBackend, "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	CacheHits.WithLabelValues(redisBackend).Inc()
	return data, nil
}

// Set stores value with a native expiry of ttl.
func (s *RedisStore) Set(ctx context.Context, silo, key string, value []byte, ttl time.Duration) error {
	// A zero expiration means "never expire" to Redis.
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	if err := s.redis.Set(ctx, s.realKey(silo, key), value, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues(redisBackend, "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheWrites.WithLabelValues(redisBackend).Inc()
	s.logger.Debug().
		Str("silo", silo).
		Str("key", key).
		Dur("ttl", ttl).
		Msg("Stored cache entry")
	return nil
}

// Purge deletes every key under the silo prefix.
func (s *RedisStore) Purge(ctx context.Context, silo string) error {
	pattern := escapePattern(s.siloPrefix(silo)) + "*"

	keys, err := s.redis.Keys(ctx, pattern).Result()
	if err != nil {
		CacheErrors.WithLabelValues(redisBackend, "purge").Inc()
		return fmt.Errorf("redis keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	deleted, err := s.redis.Del(ctx, keys...).Result()
	if err != nil {
		CacheErrors.WithLabelValues(redisBackend, "purge").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	CachePurged.WithLabelValues(redisBackend).Add(float64(deleted))
	s.logger.Info().
		Str("silo", silo).
		Int64("deleted", deleted).
		Msg("Purged cache silo")
	return nil
}

func (s *RedisStore) siloPrefix(silo string) string {
	return s.namespace + "/" + url.PathEscape(silo) + "/"
}

func (s *RedisStore) realKey(silo, key string) string {
	return s.siloPrefix(silo) + key
}

// escapePattern quotes glob metacharacters so a silo matches only itself.
func escapePattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
