// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger. A nil Output writes to stderr.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var output io.Writer = out
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: per-request detail
//   - Cache hit/miss/store with silo, key hash and ttl
//   - Responses not cached (non-positive window)
//   - Batch worker progress
//
// Info: normal operation events
//   - API error documents (they are cached, not failures)
//   - Batch completion
//   - Proxy startup/shutdown, store sweeps
//
// Warn: conditions that don't prevent a response
//   - Cache store get/set failures (degraded to miss / not cached)
//   - Unparseable cache entries (discarded)
//   - Non-2xx status with a usable body
//
// Error: failed requests
//   - Transport failures (network, error status without body)
//   - Malformed response bodies
//   - Configuration errors
//
// Context Fields:
//   - component: emitting component (xmlapi-client, cache-sqlite, ...)
//   - action: XML API action, e.g. char/MarketOrders
//   - silo: cache silo (key ID or "public")
//   - key: cache key hash
//   - ttl: cache window
//   - status: HTTP status code
//   - api_error_code: code attribute of an API error element
//
// The verification code never appears in logs; URLs are logged with it
// replaced by SANITIZED.
