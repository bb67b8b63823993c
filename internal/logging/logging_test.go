package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewDisabledIsNop(t *testing.T) {
	logger := New(false, false)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewEnabled(t *testing.T) {
	logger := New(true, true)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
