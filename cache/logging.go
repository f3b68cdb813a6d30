package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel represents different logging levels
type LogLevel int

// LogLevelDebug represents debug logging level
const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger provides structured logging for the cache and the driver.
// The zero value and a nil *Logger discard everything.
type Logger struct {
	logger *slog.Logger
	config LogConfig
}

// LogConfig holds configuration for the logger.
type LogConfig struct {
	// Level sets the minimum log level (debug, info, warn, error)
	Level LogLevel
	// EnableCallerInfo includes file and line number in logs
	EnableCallerInfo bool
	// EnableCacheOperations enables logging of individual cache hits and misses
	EnableCacheOperations bool
}

// DefaultLogConfig returns a default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:                 LogLevelInfo,
		EnableCallerInfo:      false,
		EnableCacheOperations: false, // Disabled by default to avoid noise
	}
}

// NewLogger creates a text logger writing to stderr.
func NewLogger(config LogConfig) *Logger {
	return NewLoggerWithWriter(os.Stderr, config)
}

// NewLoggerWithWriter creates a text logger writing to w.
func NewLoggerWithWriter(w io.Writer, config LogConfig) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     config.Level.slogLevel(),
		AddSource: config.EnableCallerInfo,
	})
	return &Logger{logger: slog.New(handler), config: config}
}

// FromSlog wraps an existing slog logger. A nil logger yields a no-op logger.
func FromSlog(l *slog.Logger, config LogConfig) *Logger {
	if l == nil {
		return NewNopLogger()
	}
	return &Logger{logger: l, config: config}
}

// NewNopLogger creates a no-op logger that discards all log messages.
func NewNopLogger() *Logger {
	return &Logger{}
}

func (l *Logger) enabled(level LogLevel) bool {
	return l != nil && l.logger != nil && level >= l.config.Level
}

// Debug logs debug-level messages
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	if l.enabled(LogLevelDebug) {
		l.logger.DebugContext(ctx, msg, args...)
	}
}

// Info logs info-level messages
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l.enabled(LogLevelInfo) {
		l.logger.InfoContext(ctx, msg, args...)
	}
}

// Warn logs warning-level messages
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l.enabled(LogLevelWarn) {
		l.logger.WarnContext(ctx, msg, args...)
	}
}

// Error logs error-level messages
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l.enabled(LogLevelError) {
		l.logger.ErrorContext(ctx, msg, args...)
	}
}

// With returns a logger with additional context fields
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.logger == nil {
		return l
	}
	return &Logger{logger: l.logger.With(args...), config: l.config}
}

// WithOperation returns a logger with operation context
func (l *Logger) WithOperation(operation string) *Logger {
	return l.With("operation", operation)
}

// WithIdentifier returns a logger with identifier context
func (l *Logger) WithIdentifier(id string) *Logger {
	return l.With("identifier", id)
}

// WithDuration returns a logger with duration context
func (l *Logger) WithDuration(duration time.Duration) *Logger {
	return l.With("duration", duration)
}

// Operation represents the cache operations that are logged.
type Operation string

// Operation constants for cache operations
const (
	OpGetObject   Operation = "get_object"
	OpSetObject   Operation = "set_object"
	OpGetListing  Operation = "get_listing"
	OpSetListing  Operation = "set_listing"
	OpInvalidate  Operation = "invalidate"
	OpFlush       Operation = "flush"
	OpStoreFailed Operation = "store_failed"
)

// LogCacheHit logs a cache hit event.
func LogCacheHit(ctx context.Context, logger *Logger, operation Operation, key string) {
	if logger == nil || !logger.config.EnableCacheOperations {
		return
	}

	logger.Debug(ctx, "cache hit",
		"operation", string(operation),
		"key", key,
		"result", "hit")
}

// LogCacheMiss logs a cache miss event.
func LogCacheMiss(ctx context.Context, logger *Logger, operation Operation, key string) {
	if logger == nil || !logger.config.EnableCacheOperations {
		return
	}

	logger.Debug(ctx, "cache miss",
		"operation", string(operation),
		"key", key,
		"result", "miss")
}

// LogInvalidation logs the keys removed for an identifier.
func LogInvalidation(ctx context.Context, logger *Logger, identifier string, keys int) {
	if logger == nil {
		return
	}

	logger.Debug(ctx, "cache invalidated",
		"identifier", identifier,
		"keys", keys)
}

// ParseLogLevel parses a string log level into a LogLevel.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}
