package spiegel

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testOrigin = "https://www.spiegel.de"

const issueIndex = `<html><head>
<link rel="canonical" href="https://www.spiegel.de/spiegel/print/index-1980-2.html">
</head><body>
<main id="Inhalt"><section aria-label="Ausgabe 5">
<img title="Ausgabe 5" src="cover.jpg">
<h2>Ausgabe 5</h2>
<p>Die Unterzeile der Ausgabe</p>
<span class="relative bottom-px">Erschienen am 05.01.1980</span>
<article><a href="/politik/a-1?context=issue">A</a><span>5 Min</span></article>
<article><a href="https://www.spiegel.de/kultur/b-2?context=issue">B</a><span>12Min</span></article>
<article><a href="/impressum">ohne Lesedauer</a></article>
</section></main>
</body></html>`

func articlePage(title, slug, number string) string {
	return fmt.Sprintf(`<html><head>
<title>%[1]s - DER SPIEGEL</title>
<meta property="og:url" content="https://www.spiegel.de/politik/%[2]s">
<meta name="last-modified" content="1980-01-05T10:00:00+01:00">
<meta name="description" content="Eine Unterzeile…">
<meta name="news_keywords" content="Politik, Bonn ,Wahl">
<script type="application/ld+json">[{"@type":"WebPage"},{"@type":"NewsArticle","headline":"Dachzeile","articleSection":"Politik","author":[{"@type":"Person","name":"Rudolf  Augstein,"},{"@type":"Organization","name":"DER SPIEGEL"}]}]</script>
<script type="application/settings+json">{"isCommentsEnabled":true}</script>
<script>{"general":{"consent":{"minUpdatedAt":1700000000}}}</script>
</head><body>
<div class="issue-nav"><a title="Zur Ausgabe" href="/spiegel/print/index-1980-2.html">Zur Ausgabe</a><p>%[3]s</p><p>DER SPIEGEL 2/1980</p></div>
<p>Erster Absatz mit Text.</p>
<p>Zweiter   Absatz.</p>
<button class="bookmarkButton">Merken</button>
<a data-sara-cta="sharing: Facebook">f</a>
<a data-sara-cta="sharing: X.com">x</a>
<a data-sara-cta="sharing: E-Mail">m</a>
<a data-sara-cta="sharing: Link kopieren">l</a>
</body></html>`, title, slug, number)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
