// Package cache stores raw EVE XML API responses keyed by silo and request.
//
// A silo isolates entries by credential: every authenticated key ID gets its
// own silo and anonymous calls share PublicSilo. Purging one silo never
// touches another.
//
// # Keys
//
// NewKey hashes the request target (endpoint and action) and its sorted
// query with SHA-256. The credential secret (vCode) is replaced by a
// placeholder first, so secrets never reach a cache key and rotating a
// secret does not fragment the cache:
//
//	key := cache.NewKey("https://api.eveonline.com/char/MarketOrders.xml.aspx", query, "KEY1")
//	// key.Silo == "KEY1"
//	// key.Hash == sha256("https://api.eveonline.com/char/MarketOrders.xml.aspx?characterID=...&vCode=SANITIZED")
//
// # Backends
//
// Two Store implementations are provided and selected at construction time:
//
//	// Single file, survives restarts
//	store, err := cache.OpenSQLite(ctx, "", logger) // ~/.cache/evenado/cache.db
//
//	// Shared Redis, native key expiry
//	store := cache.NewRedisStore(redisClient, logger)
//
// SQLiteStore records an absolute expiry per row, sweeps expired rows when
// opened and filters on expiry when reading. RedisStore stores the body
// verbatim under <namespace>/<silo>/<key> with the TTL set natively.
//
// # Metrics
//
//   - xmlapi_cache_hits_total{backend}
//   - xmlapi_cache_misses_total{backend}
//   - xmlapi_cache_writes_total{backend}
//   - xmlapi_cache_purged_entries_total{backend}
//   - xmlapi_cache_swept_entries_total
//   - xmlapi_cache_errors_total{backend, operation}
package cache
