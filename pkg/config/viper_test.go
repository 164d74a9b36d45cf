package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "data", v.GetString("data.root"))
	assert.Equal(t, 30*time.Second, v.GetDuration("fetch.timeout"))
	assert.Equal(t, 500*time.Millisecond, v.GetDuration("stern.month_pause"))
	assert.Equal(t, []string{"noch-fragen"}, v.GetStringSlice("stern.denylist"))
	assert.Empty(t, v.ConfigFileUsed())
}

func TestNewReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magcorpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  root: /srv/corpus\nextract:\n  workers: 6\n"), 0o600))
	t.Setenv("MAGCORPUS_EXTRACT_WORKERS", "9")

	v, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/corpus", v.GetString("data.root"))
	assert.Equal(t, 9, v.GetInt("extract.workers"))
	assert.Equal(t, path, v.ConfigFileUsed())
}

func TestNewExplicitFileMustExist(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
