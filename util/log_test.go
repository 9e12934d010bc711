package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerConfigLevel(t *testing.T) {
	assert.Equal(t, zap.InfoLevel, NewLoggerConfig(false).Level.Level())
	assert.Equal(t, zap.DebugLevel, NewLoggerConfig(true).Level.Level())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("depthcam", true)
	require.NoError(t, err)
	assert.True(t, logger.Desugar().Core().Enabled(zap.DebugLevel))
}
