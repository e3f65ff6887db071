package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	backendSQLite = "sqlite"
	backendRedis  = "redis"
)

// Config is the proxy configuration, read from the environment.
type Config struct {
	Port          string        `env:"PORT"            envDefault:"8080"`
	Endpoint      string        `env:"XMLAPI_ENDPOINT" envDefault:"https://api.eveonline.com"`
	KeyID         string        `env:"XMLAPI_KEY_ID"`
	VCode         string        `env:"XMLAPI_VCODE"`
	UserAgent     string        `env:"USER_AGENT"      envDefault:"evenado/0.0.1"`
	CacheBackend  string        `env:"CACHE_BACKEND"   envDefault:"sqlite"`
	SQLitePath    string        `env:"SQLITE_PATH"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"  envDefault:"10m"`
	RedisURL      string        `env:"REDIS_URL"       envDefault:"localhost:6379"`
	LogLevel      string        `env:"LOG_LEVEL"       envDefault:"info"`
	LogPretty     bool          `env:"LOG_PRETTY"`
	Coalesce      bool          `env:"COALESCE"`
}

// loadConfig parses and validates the environment.
func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.CacheBackend {
	case backendSQLite, backendRedis:
	default:
		return Config{}, fmt.Errorf("unknown CACHE_BACKEND %q (want sqlite or redis)", cfg.CacheBackend)
	}

	if (cfg.KeyID == "") != (cfg.VCode == "") {
		return Config{}, fmt.Errorf("XMLAPI_KEY_ID and XMLAPI_VCODE must be set together")
	}

	return cfg, nil
}
