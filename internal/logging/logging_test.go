package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tc := range tests {
		logger, err := New(Options{Level: tc.level})
		require.NoError(t, err, "level %q", tc.level)
		assert.True(t, logger.Core().Enabled(tc.expected), "level %q", tc.level)
		if tc.expected > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(tc.expected-1), "level %q", tc.level)
		}
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	logger, err := New(Options{Level: "info", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_InvalidFormat(t *testing.T) {
	_, err := New(Options{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
