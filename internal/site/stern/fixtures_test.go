package stern

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testOrigin = "https://www.stern.de"

var testNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func articlePage(title, slug string) string {
	return fmt.Sprintf(`<html><head>
<title>Kicker aus Titel | STERN.de</title>
<meta name="ob_headline" content="%[1]s">
<meta name="ob_kicker" content="Dachzeile">
<link rel="canonical" href="https://www.stern.de/politik/%[2]s.html">
<meta name="last-modified" content="2015-03-04T12:30:00+01:00">
</head><body>
<ws-gtm><script type="application/json">{"content":{"main_section":"politik","sub_section_1":"deutschland","sub_section_2":"not_set","sub_section_3":"","ad_keywords":"stern,Bundestag, Wahl ,ct_article,onecore","last_update_date":"2015-03-05T08:00:00"}}</script></ws-gtm>
<div class="intro typo-intro u-richtext"><p>Ein Vorspann zum Artikel.</p></div>
<div class="authors typo-article-info">
  <a class="authors__list-link">Anna Schmidt</a>
  <span class="typo-article-info-bold">dpa</span>
  <a class="authors__list-link"> </a>
</div>
<div class="authors__original-source">Quelle: AFP</div>
<ul class="authors__meta-data u-blanklist"><li>04.03.2015</li><li> 3 Min </li></ul>
<div class="text-element u-richtext"><p>Der erste Absatz.</p></div>
<h2 class="subheadline-element">Zwischentitel</h2>
<div class="text-element u-richtext"><p>Noch mehr Text hier.</p></div>
<i class="icon-bookmark"></i>
<a data-sara-cta="sharing: Facebook">f</a>
<a data-sara-cta="sharing: Pinterest">p</a>
</body></html>`, title, slug)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
