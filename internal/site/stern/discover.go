package stern

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/extract"
	"github.com/JakeFAU/magazine-corpus/internal/fetch"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
	"github.com/JakeFAU/magazine-corpus/internal/metrics"
	"github.com/JakeFAU/magazine-corpus/internal/urlset"
)

// DefaultMonthPause is the pause between two steps of the month walk.
const DefaultMonthPause = 500 * time.Millisecond

var yearParam = regexp.MustCompile(`year=(\d{4})`)

const (
	yearNav      = `nav[aria-labelledby="links-calendar--year"]`
	monthNav     = `nav[aria-labelledby="links-calendar--month"]`
	activeMonth  = "a.links-calendar__link.u-button.active"
	paginationUl = "ul.pagination__pages"
	teaser       = "article.teaser-plaintext"
)

// DiscoverConfig locates the archive and paces the month walk.
type DiscoverConfig struct {
	ArchiveURL string
	Origin     string
	// Denylist holds category slugs that are skipped.
	Denylist   []string
	MonthPause time.Duration
}

// DiscoverReport summarizes one discovery run.
type DiscoverReport struct {
	Categories     int
	Months         int
	TruncatedWalks int
	NewListings    int
	ListingsStored int
	ListingsFailed int
}

// Discoverer walks archive root, categories, years, months and listings.
type Discoverer struct {
	cfg         DiscoverConfig
	fetcher     *fetch.Fetcher
	failed      *ledger.Failures
	listingURLs *urlset.Lines
	store       *urlset.Store
	defectsPath string
	category    *regexp.Regexp
	logger      *zap.Logger
}

// NewDiscoverer wires a Discoverer. Every failed fetch goes to failed.
// Walks that end early are recorded in the defect ledger at defectsPath.
func NewDiscoverer(cfg DiscoverConfig, f *fetch.Fetcher, failed *ledger.Failures,
	listingURLs *urlset.Lines, store *urlset.Store, defectsPath string, logger *zap.Logger,
) *Discoverer {
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultArchiveURL
	}
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	cfg.Origin = strings.TrimSuffix(cfg.Origin, "/")
	if cfg.Denylist == nil {
		cfg.Denylist = DefaultDenylist
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		cfg:         cfg,
		fetcher:     f.WithRecorder(failed),
		failed:      failed,
		listingURLs: listingURLs,
		store:       store,
		defectsPath: defectsPath,
		category:    regexp.MustCompile(`^` + regexp.QuoteMeta(cfg.Origin) + `/([^/?#]+)/archiv/`),
		logger:      logger,
	}
}

// Run discovers listing URLs and their article URLs. Listings already in
// the store are not fetched again. Fetch failures are recorded and never
// stop the run; only persistence errors are returned.
func (d *Discoverer) Run(ctx context.Context) (rep DiscoverReport, err error) {
	var defects ledger.Defects
	defer func() {
		err = firstErr(err, d.failed.Flush(), ledger.FlushDefects(d.defectsPath, defects))
	}()

	root := d.fetcher.Get(ctx, d.cfg.ArchiveURL)
	if !root.OK() {
		d.logger.Warn("archive root unavailable", zap.String("url", d.cfg.ArchiveURL), zap.String("reason", root.Reason()))
		return rep, nil
	}
	categories, err := d.categories(root.Body)
	if err != nil {
		return rep, err
	}
	rep.Categories = len(categories)
	d.logger.Info("categories found", zap.Int("count", rep.Categories))

	for _, cat := range categories {
		for _, year := range d.years(ctx, cat) {
			if ctx.Err() != nil {
				return rep, fmt.Errorf("discovery interrupted: %w", ctx.Err())
			}
			walk := d.walkMonths(ctx, cat, year)
			rep.Months += len(walk.months)
			if walk.truncated != "" {
				rep.TruncatedWalks++
				defects.Note(walk.stoppedAt, ledger.CategoryNavigation, "possibly truncated: "+walk.truncated)
				d.logger.Warn("month walk possibly truncated",
					zap.String("category", cat),
					zap.Int("year", year),
					zap.String("stopped_at", walk.stoppedAt),
					zap.String("reason", walk.truncated))
			}
			added := 0
			for _, m := range walk.months {
				for _, l := range d.paginate(m) {
					if d.listingURLs.Add(l) {
						added++
					}
				}
			}
			if err := d.listingURLs.Flush(); err != nil {
				return rep, fmt.Errorf("persist listing urls: %w", err)
			}
			rep.NewListings += added
			metrics.ObserveDiscovered("listing", added)
		}
	}

	listings := d.listingURLs.All()
	slices.SortFunc(listings, ListingOrder)
	for _, l := range listings {
		if d.store.Has(l) {
			continue
		}
		if ctx.Err() != nil {
			return rep, fmt.Errorf("discovery interrupted: %w", ctx.Err())
		}
		ok, err := d.collectArticles(ctx, l)
		if err != nil {
			return rep, err
		}
		if ok {
			rep.ListingsStored++
		} else {
			rep.ListingsFailed++
		}
	}
	d.logger.Info("discovery finished",
		zap.Int("categories", rep.Categories),
		zap.Int("months", rep.Months),
		zap.Int("truncated_walks", rep.TruncatedWalks),
		zap.Int("new_listings", rep.NewListings),
		zap.Int("listings_stored", rep.ListingsStored),
		zap.Int("listings_failed", rep.ListingsFailed))
	return rep, nil
}

// categories returns the category slugs linked from the archive root,
// sorted, without the denylisted ones.
func (d *Discoverer) categories(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse archive root: %w", err)
	}
	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		m := d.category.FindStringSubmatch(extract.Resolve(d.cfg.ArchiveURL, a.AttrOr("href", "")))
		if m == nil || slices.Contains(d.cfg.Denylist, m[1]) || slices.Contains(out, m[1]) {
			return
		}
		out = append(out, m[1])
	})
	slices.Sort(out)
	return out, nil
}

func (d *Discoverer) categoryURL(cat string) string {
	return d.cfg.Origin + "/" + cat + "/archiv/"
}

// years reads the year navigation of a category root.
func (d *Discoverer) years(ctx context.Context, cat string) []int {
	res := d.fetcher.Get(ctx, d.categoryURL(cat))
	if !res.OK() {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		d.logger.Warn("unparsable category page", zap.String("category", cat), zap.Error(err))
		return nil
	}
	var years []int
	doc.Find(yearNav).Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		m := yearParam.FindStringSubmatch(a.AttrOr("href", ""))
		if m == nil {
			return
		}
		if y, err := strconv.Atoi(m[1]); err == nil && !slices.Contains(years, y) {
			years = append(years, y)
		}
	})
	slices.Sort(years)
	d.logger.Debug("years found", zap.String("category", cat), zap.Ints("years", years))
	return years
}

type monthPage struct {
	url  string
	body []byte
}

type monthWalk struct {
	months []monthPage
	// truncated is set when the walk ended before December for a reason
	// other than a missing next month.
	truncated string
	stoppedAt string
}

// walkMonths follows the "next month" links starting at January. It stops
// at a visited URL or when the active month has no next sibling.
func (d *Discoverer) walkMonths(ctx context.Context, cat string, year int) monthWalk {
	var walk monthWalk
	visited := make(map[string]bool)
	current := Listing{Category: cat, Year: year, Month: 1}.URL(d.cfg.Origin)
	stop := func(reason string) monthWalk {
		month := 0
		if l, ok := ParseListing(current); ok {
			month = l.Month
		}
		if month < 12 {
			walk.truncated = reason
			walk.stoppedAt = current
		}
		return walk
	}

	for current != "" && !visited[current] {
		visited[current] = true
		res := d.fetcher.Get(ctx, current)
		if !res.OK() {
			return stop("month page unavailable: " + res.Reason())
		}
		walk.months = append(walk.months, monthPage{url: current, body: res.Body})

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
		if err != nil {
			return stop("month page unparsable")
		}
		nav := doc.Find(monthNav).First()
		if nav.Length() == 0 {
			return stop("month navigation missing")
		}
		active := nav.Find(activeMonth).First()
		if active.Length() == 0 {
			return stop("active month marker missing")
		}
		next := active.Closest("li").NextAllFiltered("li").First()
		if next.Length() == 0 {
			return walk
		}
		href, ok := next.Find("a[href]").First().Attr("href")
		if !ok {
			return walk
		}
		current = extract.Resolve(current, href)
		if err := pause(ctx, d.cfg.MonthPause); err != nil {
			return walk
		}
	}
	return walk
}

// paginate lists the month listing itself and every page it links to.
func (d *Discoverer) paginate(m monthPage) []string {
	out := []string{m.url}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(m.body))
	if err != nil {
		return out
	}
	doc.Find(paginationUl).Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		abs := extract.Resolve(m.url, a.AttrOr("href", ""))
		if abs != "" && !slices.Contains(out, abs) {
			out = append(out, abs)
		}
	})
	return out
}

// collectArticles stores the teaser links of one listing. A listing that
// cannot be fetched is left out of the store so a later run retries it.
func (d *Discoverer) collectArticles(ctx context.Context, listingURL string) (bool, error) {
	res := d.fetcher.Get(ctx, listingURL)
	if !res.OK() {
		return false, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		d.failed.RecordError(listingURL, err.Error())
		return false, nil
	}
	articles := []string{}
	doc.Find(teaser).Each(func(_ int, art *goquery.Selection) {
		href := art.Find("a[href]").First().AttrOr("href", "")
		if strings.HasPrefix(href, "http") {
			articles = append(articles, href)
		}
	})
	d.store.Put(listingURL, articles)
	if err := d.store.Flush(); err != nil {
		return false, fmt.Errorf("persist listings and articles: %w", err)
	}
	metrics.ObserveDiscovered("article", len(articles))
	return true, nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
