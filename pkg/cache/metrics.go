package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend (sqlite, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmlapi_cache_hits_total",
			Help: "Total number of XML API cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses by backend
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmlapi_cache_misses_total",
			Help: "Total number of XML API cache misses",
		},
		[]string{"backend"},
	)

	// CacheWrites tracks successful Set calls
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmlapi_cache_writes_total",
			Help: "Total number of XML API responses written to cache",
		},
		[]string{"backend"},
	)

	// CachePurged tracks entries removed by Purge
	CachePurged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmlapi_cache_purged_entries_total",
			Help: "Total number of cache entries removed by silo purges",
		},
		[]string{"backend"},
	)

	// CacheSwept tracks expired rows removed by the SQLite sweep
	CacheSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "xmlapi_cache_swept_entries_total",
			Help: "Total number of expired SQLite cache rows removed by sweeps",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmlapi_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // "get", "set", "purge", "sweep"
	)
)
