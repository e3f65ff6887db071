package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const sqliteBackend = "sqlite"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache (
    silo    TEXT    NOT NULL,
    key     TEXT    NOT NULL,
    value   BLOB    NOT NULL,
    expires INTEGER NOT NULL,
    PRIMARY KEY (silo, key)
);
`

// SQLiteStore is a Store persisted in a single SQLite file.
//
// Expiry is an absolute unix timestamp in milliseconds written with each
// entry. Expired rows are deleted when the store is opened; Get also checks
// expiry, so a row that expired after opening reads as a miss but stays on
// disk until the next open, an overwrite, or an explicit Sweep.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithClock replaces time.Now for expiry computations.
func WithClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// DefaultSQLitePath returns ~/.cache/evenado/cache.db.
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".cache", "evenado", "cache.db"), nil
}

// OpenSQLite opens (creating if needed) the cache database at path and
// sweeps expired rows. An empty path selects DefaultSQLitePath.
func OpenSQLite(ctx context.Context, path string, logger zerolog.Logger, opts ...SQLiteOption) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		defaultPath, err := DefaultSQLitePath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger.With().Str("backend", sqliteBackend).Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	if _, err := s.Sweep(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Debug().Str("path", cleanPath).Msg("Opened SQLite cache")
	return s, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the stored body if its expiry is still in the future.
func (s *SQLiteStore) Get(ctx context.Context, silo, key string) ([]byte, error) {
	entry := Entry{Silo: silo, Key: key}
	var expires int64

	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires FROM cache WHERE silo = ? AND key = ?`,
		silo, key,
	).Scan(&entry.Value, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			CacheMisses.WithLabelValues(sqliteBackend).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(sqliteBackend, "get").Inc()
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	entry.ExpiresAt = time.UnixMilli(expires)

	now := s.now()
	if entry.ExpiredAt(now) {
		CacheMisses.WithLabelValues(sqliteBackend).Inc()
		s.logger.Debug().
			Str("silo", silo).
			Str("key", key).
			Msg("Cache row expired")
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(sqliteBackend).Inc()
	s.logger.Debug().
		Str("silo", silo).
		Str("key", key).
		Dur("ttl", entry.TTLAt(now)).
		Msg("Cache row found")
	return entry.Value, nil
}

// Set upserts the row at (silo, key) with expiry now + ttl.
func (s *SQLiteStore) Set(ctx context.Context, silo, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	if value == nil {
		value = []byte{}
	}

	entry := NewEntry(silo, key, value, ttl, s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache (silo, key, value, expires) VALUES (?, ?, ?, ?)
		 ON CONFLICT(silo, key) DO UPDATE SET
		    value = excluded.value,
		    expires = excluded.expires`,
		entry.Silo, entry.Key, entry.Value, entry.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		CacheErrors.WithLabelValues(sqliteBackend, "set").Inc()
		return fmt.Errorf("sqlite set: %w", err)
	}

	CacheWrites.WithLabelValues(sqliteBackend).Inc()
	s.logger.Debug().
		Str("silo", silo).
		Str("key", key).
		Time("expires", entry.ExpiresAt).
		Msg("Stored cache entry")
	return nil
}

// Purge deletes every row of the silo.
func (s *SQLiteStore) Purge(ctx context.Context, silo string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE silo = ?`, silo)
	if err != nil {
		CacheErrors.WithLabelValues(sqliteBackend, "purge").Inc()
		return fmt.Errorf("sqlite purge: %w", err)
	}

	deleted, _ := res.RowsAffected()
	CachePurged.WithLabelValues(sqliteBackend).Add(float64(deleted))
	s.logger.Info().
		Str("silo", silo).
		Int64("deleted", deleted).
		Msg("Purged cache silo")
	return nil
}

// Sweep deletes rows whose expiry has passed and returns how many were
// removed. It runs on open; long-lived processes may call it periodically.
func (s *SQLiteStore) Sweep(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE expires <= ?`, s.now().UnixMilli())
	if err != nil {
		CacheErrors.WithLabelValues(sqliteBackend, "sweep").Inc()
		return 0, fmt.Errorf("sqlite sweep: %w", err)
	}

	swept, _ := res.RowsAffected()
	CacheSwept.Add(float64(swept))
	if swept > 0 {
		s.logger.Debug().Int64("swept", swept).Msg("Swept expired cache rows")
	}
	return swept, nil
}
