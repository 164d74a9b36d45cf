package urlset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byLength(a, b string) int {
	return len(a) - len(b)
}

func TestStoreFlushUsesOrderAndReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "SPIEGEL_issues_and_articles_def_1.json")
	s, err := Load(path, byLength)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	s.Put("https://x/long-issue", []string{"a", "b", "a"})
	s.Put("https://x/i", []string{"c"})
	require.NoError(t, s.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(data), "https://x/i"), strings.Index(string(data), "https://x/long-issue"))

	reloaded, err := Load(path, byLength)
	require.NoError(t, err)
	assert.True(t, reloaded.Has("https://x/i"))
	assert.Equal(t, []string{"a", "b"}, reloaded.Get("https://x/long-issue"))
	assert.Equal(t, []string{"https://x/i", "https://x/long-issue"}, reloaded.Keys())
	assert.Len(t, reloaded.Units(), 2)
}

func TestStoreDefaultOrder(t *testing.T) {
	t.Parallel()

	s, err := Load(filepath.Join(t.TempDir(), "x.json"), nil)
	require.NoError(t, err)
	s.Put("b", nil)
	s.Put("a", nil)
	assert.Equal(t, []string{"a", "b"}, s.Keys())
}

func TestLinesAppendAcrossRuns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "spiegel_issue_urls_def_1.txt")
	l, err := LoadLines(path)
	require.NoError(t, err)
	assert.True(t, l.Add("https://x/1"))
	assert.False(t, l.Add("https://x/1"))
	assert.True(t, l.Add("https://x/2"))
	require.NoError(t, l.Flush())
	require.NoError(t, l.Flush())

	again, err := LoadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/1", "https://x/2"}, again.All())
	assert.True(t, again.Contains("https://x/2"))
	assert.True(t, again.Add("https://x/3"))
	require.NoError(t, again.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://x/1\nhttps://x/2\nhttps://x/3\n", string(data))
}
