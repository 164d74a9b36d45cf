package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/magazine-corpus/internal/clock"
)

var fixedNow = clock.Fixed(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))

func readLedger(t *testing.T, path string) map[string]map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestFailuresFlushMergesWithExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "failed_urls_def_1.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"https://old.example/":{"timestamp":"2020-01-01T00:00:00.000000","status_code":404}}`), 0o600))

	f := NewFailures(path, fixedNow)
	f.RecordStatus("https://a.example/", 503)
	f.RecordError("https://b.example/", "repeated timeouts")
	assert.Equal(t, 2, f.Len())
	require.NoError(t, f.Flush())

	got := readLedger(t, path)
	require.Len(t, got, 3)
	assert.InDelta(t, 404, got["https://old.example/"]["status_code"], 0)
	assert.InDelta(t, 503, got["https://a.example/"]["status_code"], 0)
	assert.Equal(t, "2024-05-06T07:08:09.000000", got["https://a.example/"]["timestamp"])
	assert.Equal(t, "repeated timeouts", got["https://b.example/"]["error"])
	assert.NotContains(t, got["https://b.example/"], "status_code")
}

func TestFailuresFlushIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.json")
	f := NewFailures(path, fixedNow)
	f.RecordStatus("k", 500)
	require.NoError(t, f.Flush())
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, f.Flush())
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFailuresFlushWithoutEntriesWritesNothing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, NewFailures(path, fixedNow).Flush())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFailuresEntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	f := NewFailures("unused", fixedNow)
	f.RecordStatus("k", 404)
	entries := f.Entries()
	delete(entries, "k")
	assert.Equal(t, 1, f.Len())
}

func TestDefectsMergeAndEncode(t *testing.T) {
	t.Parallel()

	var local Defects
	assert.True(t, local.Empty())
	local.Article("1980-01", "article - null", "article number missing for [Titel]")
	local.Note("1980-01", CategoryIssueMetadata, "title missing")

	var run Defects
	run.Note("1980-02", CategoryIssue, "no articles found")
	run.Merge(local)
	assert.Equal(t, 3, run.Len())

	data, err := json.Marshal(run)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"1980-01": {"metadata - issue": "title missing", "article_data_dict": {"article - null": "article number missing for [Titel]"}},
		"1980-02": {"Issue": "no articles found"}
	}`, string(data))

	var decoded Defects
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "title missing", decoded.Group("1980-01").Notes[CategoryIssueMetadata])
	assert.Equal(t, 3, decoded.Len())
}

func TestDefectsMergeIsDeep(t *testing.T) {
	t.Parallel()

	var a, b Defects
	a.Article("p", "one", "first")
	b.Article("p", "two", "second")
	a.Merge(b)
	assert.Len(t, a.Group("p").Articles, 2)
}

func TestFlushDefects(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "spiegel_incorrect_data.json")
	require.NoError(t, FlushDefects(path, Defects{}))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	var first Defects
	first.Note("1980-01", CategoryIssue, "no articles found")
	require.NoError(t, FlushDefects(path, first))

	var second Defects
	second.Article("1980-01", "x (x.html)", "missing or defective article data")
	require.NoError(t, FlushDefects(path, second))

	got := readLedger(t, path)
	require.Contains(t, got, "1980-01")
	assert.Equal(t, "no articles found", got["1980-01"][CategoryIssue])
	assert.Contains(t, got["1980-01"], "article_data_dict")
}
