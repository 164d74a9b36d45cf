package spiegel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/magazine-corpus/internal/extract"
)

var testNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func articleJob(t *testing.T, content string) Job {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a-1.html"), content)
	date := time.Date(1980, 1, 5, 0, 0, 0, 0, time.UTC)
	return Job{
		IssueKey:     "1980-02",
		Folder:       dir,
		File:         "a-1.html",
		IssueDate:    &date,
		ReadingTimes: map[string]string{"https://www.spiegel.de/politik/a-1": "5 Min"},
	}
}

func TestExtractArticle(t *testing.T) {
	t.Parallel()

	out := ExtractArticle(articleJob(t, articlePage("Der Titel", "a-1", "Artikel 1 / 2")), testNow)
	require.Empty(t, out.Failure)
	require.NotNil(t, out.Article)
	a := out.Article

	assert.Equal(t, "1980-02", out.UnitKey)
	assert.Equal(t, "article - 001-002", out.ArticleKey)
	assert.Equal(t, "Der Titel", *a.Title)
	assert.Equal(t, "Eine Unterzeile", *a.Subtitle)
	assert.Equal(t, "Dachzeile", *a.Kicker)
	assert.Equal(t, "001-002", *a.Number)
	assert.Equal(t, "https://www.spiegel.de/politik/a-1", *a.URL)
	assert.Equal(t, "1980-01-05T10:00:00+01:00", *a.PublicationDate)
	assert.Equal(t, []string{"Rudolf Augstein"}, a.Authors)
	assert.Equal(t, []string{"Politik"}, a.Categories)
	assert.Equal(t, []string{"Politik", "Bonn", "Wahl"}, a.Keywords)
	assert.True(t, a.IsReadingTime)
	assert.Equal(t, "5 Min", *a.ReadingTime)
	require.NotNil(t, a.IsCopyrighted)
	assert.True(t, *a.IsCopyrighted)
	assert.False(t, a.IsPaywall)
	assert.True(t, a.IsComment)
	assert.False(t, a.IsButtonLike)
	assert.True(t, a.IsButtonSave)
	assert.True(t, a.IsButtonCopyLink)
	assert.True(t, a.IsButtonSendEmail)
	assert.Equal(t, []string{"Facebook", "Twitter"}, a.PlatformsSharing)
	assert.True(t, a.IsAdvertisement)
	assert.Equal(t, "2023-11-14T22:13:20", *a.DateOfLastUpdate)
	assert.Equal(t, "<p>Erster Absatz mit Text.</p><p>Zweiter   Absatz.</p>", *a.Text)
	assert.Equal(t, 6, a.WordCount)
	assert.Equal(t, 41, a.CharacterCount)
	assert.True(t, out.Defects.Empty())
}

func TestExtractArticleWithoutNumber(t *testing.T) {
	t.Parallel()

	out := ExtractArticle(articleJob(t, articlePage("Ohne Nummer", "a-1", "DER SPIEGEL")), testNow)
	require.NotNil(t, out.Article)

	assert.Equal(t, extract.NullArticleKey, out.ArticleKey)
	assert.Nil(t, out.Article.Number)
	g := out.Defects.Group("1980-02")
	require.NotNil(t, g)
	assert.Equal(t, "article number missing for [Ohne Nummer]", g.Articles[extract.NullArticleKey])
}

func TestExtractArticleWithoutBackToIssueLink(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>Kurz - DER SPIEGEL</title>
<meta property="og:url" content="https://www.spiegel.de/politik/k-9"></head><body>
<div><p>Artikel 3 / 7</p></div>
<p>Text.</p>
</body></html>`
	out := ExtractArticle(articleJob(t, page), testNow)
	require.NotNil(t, out.Article)

	assert.Equal(t, "article - 003-007", out.ArticleKey)
	assert.Equal(t, "<p>Artikel 3 / 7</p><p>Text.</p>", *out.Article.Text)
	assert.False(t, out.Article.IsReadingTime)
	assert.Nil(t, out.Article.ReadingTime)
	assert.Nil(t, out.Article.PlatformsSharing)
	assert.Nil(t, out.Article.Keywords)
	assert.False(t, out.Article.IsComment)
	assert.Equal(t, "no 'Zur Ausgabe' link found", out.Defects.Group("1980-02").Articles["a-1.html"])
}

func TestExtractArticleMissingDataIsReported(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>Nur Titel - DER SPIEGEL</title></head><body><div>Artikel 1/1</div></body></html>`
	out := ExtractArticle(articleJob(t, page), testNow)
	require.NotNil(t, out.Article)

	assert.Nil(t, out.Article.URL)
	assert.Nil(t, out.Article.Text)
	assert.Zero(t, out.Article.WordCount)
	g := out.Defects.Group("1980-02")
	require.NotNil(t, g)
	assert.Equal(t, "missing or defective article data. See: [null]", g.Articles["Nur Titel (a-1.html)"])
}

func TestExtractArticleSubtitleRepeatingLeadIsDropped(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>T - DER SPIEGEL</title>
<meta name="description" content="Erster Absatz mit Text…"></head><body>
<a title="Zur Ausgabe" href="/x">Zur Ausgabe</a>
<p>Erster Absatz mit Text. Und mehr.</p></body></html>`
	out := ExtractArticle(articleJob(t, page), testNow)
	require.NotNil(t, out.Article)
	assert.Nil(t, out.Article.Subtitle)
}

func TestExtractArticleEmptyDocument(t *testing.T) {
	t.Parallel()

	out := ExtractArticle(articleJob(t, "<html><head><title>x</title></head><body>  </body></html>"), testNow)
	assert.Nil(t, out.Article)
	assert.Empty(t, out.Failure)
}

func TestExtractArticleMissingFileIsFailure(t *testing.T) {
	t.Parallel()

	out := ExtractArticle(Job{IssueKey: "1980-02", Folder: t.TempDir(), File: "gone.html"}, testNow)
	assert.Nil(t, out.Article)
	assert.Contains(t, out.Failure, "error:")
	assert.Equal(t, "gone.html", out.File)
}
