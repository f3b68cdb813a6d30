package cache

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(&buf, LogConfig{Level: LogLevelWarn})
	ctx := context.Background()

	log.Debug(ctx, "debug message")
	log.Info(ctx, "info message")
	log.Warn(ctx, "warn message")
	log.Error(ctx, "error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(&buf, DefaultLogConfig()).
		WithOperation("rename").
		WithIdentifier("a/b.txt")

	log.Info(context.Background(), "renamed")
	assert.Contains(t, buf.String(), "operation=rename")
	assert.Contains(t, buf.String(), "identifier=a/b.txt")
}

func TestLogger_Nop(t *testing.T) {
	ctx := context.Background()
	var nilLogger *Logger

	// None of these may panic.
	NewNopLogger().With("k", "v").Error(ctx, "dropped")
	nilLogger.Info(ctx, "dropped")
	assert.Nil(t, nilLogger.With("k", "v"))
	FromSlog(nil, DefaultLogConfig()).Warn(ctx, "dropped")
}

func TestLogger_FromSlog(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	log := FromSlog(base, LogConfig{Level: LogLevelDebug, EnableCacheOperations: true})

	LogCacheHit(context.Background(), log, OpGetObject, "key1")
	assert.Contains(t, buf.String(), `"result":"hit"`)
}

func TestLogCacheOperations_Disabled(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(&buf, LogConfig{Level: LogLevelDebug})

	LogCacheMiss(context.Background(), log, OpGetListing, "key1")
	assert.Empty(t, buf.String())
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLogLevel("loud")
	require.Error(t, err)
}
