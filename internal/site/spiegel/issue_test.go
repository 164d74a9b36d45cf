package spiegel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/magazine-corpus/internal/ledger"
)

func TestExtractIssue(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.html")
	writeFile(t, path, issueIndex)

	res, err := ExtractIssue(path, "1980-02", testOrigin)
	require.NoError(t, err)
	require.True(t, res.Found)
	require.NotNil(t, res.Issue)

	assert.Equal(t, "1980-02", res.Issue.Number)
	assert.Equal(t, "Ausgabe 5", *res.Issue.Title)
	assert.Equal(t, "Die Unterzeile der Ausgabe", *res.Issue.Subtitle)
	assert.Equal(t, "https://www.spiegel.de/spiegel/print/index-1980-2.html", *res.Issue.URL)
	assert.Equal(t, "1980-01-05", *res.Issue.PublicationDate)
	assert.Equal(t, time.Date(1980, 1, 5, 0, 0, 0, 0, time.UTC), *res.Date)
	assert.Equal(t, map[string]string{
		"https://www.spiegel.de/politik/a-1": "5 Min",
		"https://www.spiegel.de/kultur/b-2":  "12Min",
	}, res.ReadingTimes)
	assert.True(t, res.Defects.Empty())
	assert.Empty(t, res.Issue.Articles)
}

func TestExtractIssueMissingFile(t *testing.T) {
	t.Parallel()

	res, err := ExtractIssue(filepath.Join(t.TempDir(), "index.html"), "1980-02", testOrigin)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Issue)
}

func TestExtractIssuePartialRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.html")
	writeFile(t, path, `<html><body><main id="Inhalt"><section aria-label="Ausgabe 9"></section></main></body></html>`)

	res, err := ExtractIssue(path, "1961-09", testOrigin)
	require.NoError(t, err)
	require.NotNil(t, res.Issue)

	assert.Equal(t, "Ausgabe 9", *res.Issue.Title)
	assert.Nil(t, res.Issue.Subtitle)
	assert.Nil(t, res.Issue.URL)
	assert.Nil(t, res.Issue.PublicationDate)
	assert.Nil(t, res.Date)
	g := res.Defects.Group("1961-09")
	require.NotNil(t, g)
	assert.Equal(t, "missing or defective issue data. URL: [null], Date: [null]", g.Notes[ledger.CategoryIssueMetadata])
}

func TestExtractIssueEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.html")
	writeFile(t, path, "  \n")

	res, err := ExtractIssue(path, "1961-10", testOrigin)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Nil(t, res.Issue)
	assert.Contains(t, res.Defects.Group("1961-10").Notes, ledger.CategoryIssueMetadata)
}
