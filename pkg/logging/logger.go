// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
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

// Component names used with NewLogger.
const (
	ComponentCLI     = "cli"
	ComponentKeyPool = "keypool"
	ComponentExport  = "export"
	ComponentMetrics = "metrics"
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

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel validates a level name from flags or the environment.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
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
// Debug: Detailed information for debugging
//   - Each successful API attempt (endpoint, masked key, duration)
//   - Thumbnail fallbacks from maxres to hqdefault
//
// Info: Normal operation events
//   - Probe result per key and the selected starting key
//   - Total result estimate and per-page progress
//   - Links saved or queued, thumbnails written
//
// Warn: Warning conditions that don't prevent operation
//   - Key rotation after 400, 403 or 429
//   - Keys found exhausted, invalid or indeterminate by the probe
//   - Partial results (failed page, skipped video chunk)
//
// Error: Error conditions requiring attention
//   - All keys exhausted for one call
//   - Non-retryable request failures
//   - No active key after the probe
//
// Context Fields:
//   - endpoint: API method (search.list, channels.list, videos.list)
//   - key: masked API key, last 6 characters only
//   - key_number: 1-based key position in the pool
//   - status / status_code: HTTP status code
//   - reason: Google API error reason (quotaExceeded, keyInvalid, ...)
//   - error_class: credential, request or transport
//   - query_kind: search or channel_videos
//   - pages / items / total_estimate: pagination progress
