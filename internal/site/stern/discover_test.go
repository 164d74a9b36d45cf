package stern

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/JakeFAU/magazine-corpus/internal/clock"
	"github.com/JakeFAU/magazine-corpus/internal/fetch"
	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
	"github.com/JakeFAU/magazine-corpus/internal/urlset"
)

const archiveRoot = `<html><body>
<a href="/politik/archiv/">Politik</a>
<a href="/kultur/archiv/">Kultur</a>
<a href="/politik/archiv/">Politik nochmal</a>
<a href="/noch-fragen/archiv/">Noch Fragen</a>
<a href="/impressum">Impressum</a>
</body></html>`

func yearNavPage(cat string, years ...int) string {
	var b strings.Builder
	b.WriteString(`<html><body><nav aria-labelledby="links-calendar--year"><ul>`)
	for _, y := range years {
		fmt.Fprintf(&b, `<li><a href="/%s/archiv/?month=1&year=%d">%d</a></li>`, cat, y, y)
	}
	b.WriteString(`</ul></nav></body></html>`)
	return b.String()
}

// monthHTML renders a month listing of politik in 2015 whose navigation
// ends at last.
func monthHTML(month, last int, extra string) string {
	var b strings.Builder
	b.WriteString(`<html><body><nav aria-labelledby="links-calendar--month"><ul>`)
	for m := 1; m <= last; m++ {
		class := "links-calendar__link u-button"
		if m == month {
			class += " active"
		}
		fmt.Fprintf(&b, `<li><a class="%s" href="/politik/archiv/?month=%d&year=2015">%d</a></li>`, class, m, m)
	}
	b.WriteString(`</ul></nav>`)
	b.WriteString(extra)
	b.WriteString(`</body></html>`)
	return b.String()
}

const politikJanuaryExtra = `
<ul class="pagination__pages">
  <li><a href="/politik/archiv/?month=1&year=2015">1</a></li>
  <li><a href="/politik/archiv/?month=1&year=2015&pageNum=2">2</a></li>
</ul>
<article class="teaser-plaintext"><a href="https://www.stern.de/politik/erster.html">Erster</a></article>
<article class="teaser-plaintext"><a href="/politik/relativ.html">Relativ</a></article>
<article class="teaser-plaintext"><a href="https://www.stern.de/politik/zweiter.html">Zweiter</a></article>`

func archiveHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.RequestURI() {
	case "/archiv/":
		_, _ = w.Write([]byte(archiveRoot))
	case "/politik/archiv/":
		_, _ = w.Write([]byte(yearNavPage("politik", 2015, 2015)))
	case "/kultur/archiv/":
		_, _ = w.Write([]byte(yearNavPage("kultur", 2016)))
	case "/politik/archiv/?month=1&year=2015":
		_, _ = w.Write([]byte(monthHTML(1, 3, politikJanuaryExtra)))
	case "/politik/archiv/?month=2&year=2015":
		_, _ = w.Write([]byte(monthHTML(2, 3, "")))
	case "/politik/archiv/?month=3&year=2015":
		_, _ = w.Write([]byte(monthHTML(3, 3, "")))
	case "/politik/archiv/?month=1&year=2015&pageNum=2":
		w.WriteHeader(http.StatusServiceUnavailable)
	case "/kultur/archiv/?month=1&year=2016":
		_, _ = w.Write([]byte(`<html><body>
<nav aria-labelledby="links-calendar--month"><ul><li><a class="links-calendar__link u-button" href="/kultur/archiv/?month=2&year=2016">2</a></li></ul></nav>
<article class="teaser-plaintext"><a href="https://www.stern.de/kultur/film.html">Film</a></article>
</body></html>`))
	default:
		http.NotFound(w, r)
	}
}

type discoverFixture struct {
	srv         *httptest.Server
	paths       Paths
	failed      *ledger.Failures
	listingURLs *urlset.Lines
	store       *urlset.Store
}

func newDiscoverFixture(t *testing.T, handler http.HandlerFunc) *discoverFixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	paths := Paths{Root: t.TempDir()}
	lines, err := urlset.LoadLines(paths.ListingURLs())
	require.NoError(t, err)
	store, err := urlset.Load(paths.ListingsAndArticles(), ListingOrder)
	require.NoError(t, err)
	return &discoverFixture{
		srv:         srv,
		paths:       paths,
		failed:      ledger.NewFailures(paths.FailedURLs(), clock.Fixed(testNow)),
		listingURLs: lines,
		store:       store,
	}
}

func (f *discoverFixture) discoverer(t *testing.T) *Discoverer {
	cfg := DiscoverConfig{ArchiveURL: f.srv.URL + "/archiv/", Origin: f.srv.URL}
	fetcher := fetch.New(fetch.Config{Timeout: 2 * time.Second, Schedule: []time.Duration{time.Millisecond}})
	return NewDiscoverer(cfg, fetcher, f.failed, f.listingURLs, f.store, f.paths.Defects(), zaptest.NewLogger(t))
}

func TestDiscovererRun(t *testing.T) {
	t.Parallel()

	f := newDiscoverFixture(t, archiveHandler)
	rep, err := f.discoverer(t).Run(context.Background())
	require.NoError(t, err)

	listing := func(cat string, year, month, page int) string {
		return Listing{Category: cat, Year: year, Month: month, Page: page}.URL(f.srv.URL)
	}
	assert.Equal(t, 2, rep.Categories)
	assert.Equal(t, 4, rep.Months)
	assert.Equal(t, 1, rep.TruncatedWalks)
	assert.Equal(t, 5, rep.NewListings)
	assert.Equal(t, 4, rep.ListingsStored)
	assert.Equal(t, 1, rep.ListingsFailed)

	assert.ElementsMatch(t, []string{
		listing("politik", 2015, 1, 0),
		listing("politik", 2015, 1, 2),
		listing("politik", 2015, 2, 0),
		listing("politik", 2015, 3, 0),
		listing("kultur", 2016, 1, 0),
	}, f.listingURLs.All())

	assert.Equal(t, []string{
		listing("politik", 2015, 1, 0),
		listing("politik", 2015, 2, 0),
		listing("politik", 2015, 3, 0),
		listing("kultur", 2016, 1, 0),
	}, f.store.Keys())
	assert.Equal(t, []string{
		"https://www.stern.de/politik/erster.html",
		"https://www.stern.de/politik/zweiter.html",
	}, f.store.Get(listing("politik", 2015, 1, 0)))
	assert.Empty(t, f.store.Get(listing("politik", 2015, 3, 0)))
	assert.Equal(t, []string{"https://www.stern.de/kultur/film.html"}, f.store.Get(listing("kultur", 2016, 1, 0)))

	entries := map[string]ledger.Entry{}
	found, err := jsonfile.Read(f.failed.Path(), &entries)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, http.StatusServiceUnavailable, entries[listing("politik", 2015, 1, 2)].StatusCode)

	var defects ledger.Defects
	data, err := os.ReadFile(f.paths.Defects())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &defects))
	g := defects.Group(listing("kultur", 2016, 1, 0))
	require.NotNil(t, g)
	assert.Equal(t, "possibly truncated: active month marker missing", g.Notes[ledger.CategoryNavigation])
	assert.Nil(t, defects.Group(listing("politik", 2015, 3, 0)))
}

func TestDiscovererRetriesOnlyFailedListings(t *testing.T) {
	t.Parallel()

	var failedHits, storedHits atomic.Int32
	f := newDiscoverFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.RequestURI() {
		case "/politik/archiv/?month=1&year=2015&pageNum=2":
			failedHits.Add(1)
		case "/kultur/archiv/?month=1&year=2016":
			storedHits.Add(1)
		}
		archiveHandler(w, r)
	})
	_, err := f.discoverer(t).Run(context.Background())
	require.NoError(t, err)
	rep, err := f.discoverer(t).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, rep.NewListings)
	assert.Equal(t, 1, rep.ListingsFailed)
	assert.Zero(t, rep.ListingsStored)
	assert.Equal(t, int32(2), failedHits.Load())
	// once per walk plus the first article collection
	assert.Equal(t, int32(3), storedHits.Load())
}

func TestDiscovererRootFailure(t *testing.T) {
	t.Parallel()

	f := newDiscoverFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	rep, err := f.discoverer(t).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Categories)

	entries := map[string]ledger.Entry{}
	_, err = jsonfile.Read(f.failed.Path(), &entries)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, entries[f.srv.URL+"/archiv/"].StatusCode)
}
