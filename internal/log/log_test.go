package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/config"
)

func TestSetupStderrLogger(t *testing.T) {
	t.Parallel()

	logger, closer, err := Setup(config.LoggingConfig{Level: "info"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.Nil(t, closer)
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, _, err := Setup(config.LoggingConfig{Level: "verbose"})
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSetupFileLoggerWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "odin.log")
	logger, closer, err := Setup(config.LoggingConfig{Level: "debug", File: path})
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Info("profile store opened", "path", "/tmp/odin.db")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "profile store opened")
}

func TestSetupFileLoggerHonorsLevel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "odin.log")
	logger, closer, err := Setup(config.LoggingConfig{Level: "error", File: path})
	require.NoError(t, err)

	logger.Info("suppressed")
	logger.Error("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "suppressed")
	require.Contains(t, string(data), "kept")
}

func TestNewRotatingWriterRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewRotatingWriter(RotationConfig{})
	require.Error(t, err)
}
