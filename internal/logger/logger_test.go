package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies known and unknown level names.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	level, ok := ParseLogLevel(" Debug ")
	require.True(t, ok)
	require.Equal(t, zapcore.DebugLevel, level)

	level, ok = ParseLogLevel("nonsense")
	require.False(t, ok)
	require.Equal(t, zapcore.InfoLevel, level)
}

// TestFromContext_FallsBackToGlobal asserts the global logger is used when the
// context carries none.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithName_ScopesLogger checks that named loggers travel via the context.
func TestWithName_ScopesLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	scoped := zap.New(core).Sugar()

	ctx := ToContext(context.Background(), scoped)
	ctx = WithName(ctx, "monitor")
	ctx = WithKV(ctx, "field", "Match Field Set #1")

	Infof(ctx, "polling started")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "monitor", entries[0].LoggerName)
	require.Equal(t, "field", entries[0].Context[0].Key)
}
