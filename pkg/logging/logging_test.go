package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("should build a logger at the configured level", func(t *testing.T) {
		logger, zl, err := New(Config{Level: "debug"})

		require.NoError(t, err)
		require.NotNil(t, logger)
		require.NotNil(t, zl)
		assert.True(t, zl.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("should fall back to info for an unknown level", func(t *testing.T) {
		_, zl, err := New(Config{Level: "nope"})

		require.NoError(t, err)
		assert.True(t, zl.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, zl.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("should log error and field context without panicking", func(t *testing.T) {
		logger, _, err := New(Config{Level: "error"})
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			logger.WithError(errors.New("connection refused")).
				WithFields(map[string]any{"dataset_id": "ds-1"}).
				Error("failed to load rows")
		})
	})
}
