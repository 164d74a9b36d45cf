package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("development logger ready")
}

func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("production logger ready")
}

func TestNewWithFileTruncatesAndWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "process.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("stale line from a previous run\n"), 0o600))

	logger, closeFn, err := NewWithFile(false, path)
	require.NoError(t, err)
	logger.Info("fresh run")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fresh run")
	assert.NotContains(t, string(data), "stale line")
}

func TestNewWithFileWithoutPath(t *testing.T) {
	t.Parallel()

	logger, closeFn, err := NewWithFile(false, "")
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, closeFn)
}
