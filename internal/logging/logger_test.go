package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/localnerve/conexo-admin/internal/config"
)

func TestNewFallsBackToInfo(t *testing.T) {
	logger, err := New(&config.Config{LogLevel: "nonsense"})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewHonoursLevel(t *testing.T) {
	logger, err := New(&config.Config{LogLevel: "WARN"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestPrintfAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	adapter := NewPrintfAdapter(zap.New(core))

	adapter.Printf("slow query %s\n", "SELECT 1")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "slow query SELECT 1", logs.All()[0].Message)
}

func TestPrintfAdapterNilLogger(t *testing.T) {
	adapter := NewPrintfAdapter(nil)
	assert.NotPanics(t, func() { adapter.Printf("ignored %d", 1) })
}
