package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLevels(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop() })

	require.NoError(t, Init("debug", false))
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init("warn", true))
	assert.False(t, Log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Log.Core().Enabled(zapcore.WarnLevel))

	require.NoError(t, Init("", false))
	assert.True(t, Log.Core().Enabled(zapcore.InfoLevel))
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop() })

	before := Log
	assert.Error(t, Init("loud", false))
	assert.Same(t, before, Log)
}
