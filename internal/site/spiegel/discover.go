package spiegel

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/JakeFAU/magazine-corpus/internal/extract"
	"github.com/JakeFAU/magazine-corpus/internal/fetch"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
	"github.com/JakeFAU/magazine-corpus/internal/metrics"
	"github.com/JakeFAU/magazine-corpus/internal/urlset"
)

var (
	archiveMarker = regexp.MustCompile(`(?i)der spiegel archiv`)
	// Years after 2009 are behind the paywall.
	yearPattern = regexp.MustCompile(`\b(19[0-9]{2}|200[0-9])\b`)
)

const articleMarker = "context=issue"

// DiscoverConfig locates the archive. Both URLs default to the live site.
type DiscoverConfig struct {
	ArchiveURL string
	Origin     string
}

// DiscoverReport summarizes one discovery run.
type DiscoverReport struct {
	YearPages    int
	NewIssues    int
	IssuesStored int
	IssuesFailed int
}

// Discoverer walks archive root, year pages and issue pages.
type Discoverer struct {
	cfg          DiscoverConfig
	pages        *fetch.Fetcher
	issues       *fetch.Fetcher
	failedURLs   *ledger.Failures
	failedIssues *ledger.Failures
	issueURLs    *urlset.Lines
	store        *urlset.Store
	issuePattern *regexp.Regexp
	logger       *zap.Logger
}

// NewDiscoverer wires a Discoverer. Archive root and year page failures go
// to failedURLs, issue page failures to failedIssues.
func NewDiscoverer(cfg DiscoverConfig, f *fetch.Fetcher, failedURLs, failedIssues *ledger.Failures,
	issueURLs *urlset.Lines, store *urlset.Store, logger *zap.Logger,
) *Discoverer {
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultArchiveURL
	}
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		cfg:          cfg,
		pages:        f.WithRecorder(failedURLs),
		issues:       f.WithRecorder(failedIssues),
		failedURLs:   failedURLs,
		failedIssues: failedIssues,
		issueURLs:    issueURLs,
		store:        store,
		issuePattern: regexp.MustCompile(`^` + regexp.QuoteMeta(cfg.ArchiveURL) + `index-\d{4}-\d{1,2}\.html`),
		logger:       logger,
	}
}

// Run discovers year pages, issue URLs and article URLs. Issues already in
// the store are not fetched again. Fetch failures are recorded and never
// stop the run; only persistence errors are returned.
func (d *Discoverer) Run(ctx context.Context) (rep DiscoverReport, err error) {
	defer func() {
		if flushErr := d.flushLedgers(); flushErr != nil && err == nil {
			err = flushErr
		}
	}()

	root := d.pages.Get(ctx, d.cfg.ArchiveURL)
	if !root.OK() {
		d.logger.Warn("archive root unavailable", zap.String("url", d.cfg.ArchiveURL), zap.String("reason", root.Reason()))
		return rep, nil
	}
	years, err := d.yearPages(root.Body)
	if err != nil {
		return rep, err
	}
	d.logger.Info("year pages found", zap.Int("count", len(years)))

	for _, yearURL := range years {
		if ctx.Err() != nil {
			return rep, fmt.Errorf("discovery interrupted: %w", ctx.Err())
		}
		rep.YearPages++
		n, err := d.collectIssues(ctx, yearURL)
		if err != nil {
			return rep, err
		}
		rep.NewIssues += n
	}

	issues := d.issueURLs.All()
	slices.SortFunc(issues, IssueURLOrder)
	for _, issueURL := range issues {
		if d.store.Has(issueURL) {
			continue
		}
		if ctx.Err() != nil {
			return rep, fmt.Errorf("discovery interrupted: %w", ctx.Err())
		}
		stored, err := d.collectArticles(ctx, issueURL)
		if err != nil {
			return rep, err
		}
		if stored {
			rep.IssuesStored++
		} else {
			rep.IssuesFailed++
		}
	}
	d.logger.Info("discovery finished",
		zap.Int("year_pages", rep.YearPages),
		zap.Int("new_issues", rep.NewIssues),
		zap.Int("issues_stored", rep.IssuesStored),
		zap.Int("issues_failed", rep.IssuesFailed))
	return rep, nil
}

// yearPages returns the absolute year page URLs linked next to the
// "Der Spiegel Archiv" heading, sorted and de-duplicated.
func (d *Discoverer) yearPages(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse archive root: %w", err)
	}
	seen := make(map[string]bool)
	var out []string
	doc.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return ownTextMatches(s, archiveMarker)
	}).Each(func(_ int, marker *goquery.Selection) {
		marker.Parents().Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href := a.AttrOr("href", "")
			if !yearPattern.MatchString(href) || !yearPattern.MatchString(strings.TrimSpace(a.Text())) {
				return
			}
			abs := extract.Resolve(d.cfg.ArchiveURL, href)
			if abs == "" || seen[abs] {
				return
			}
			seen[abs] = true
			out = append(out, abs)
		})
	})
	slices.Sort(out)
	return out, nil
}

func (d *Discoverer) collectIssues(ctx context.Context, yearURL string) (int, error) {
	res := d.pages.Get(ctx, yearURL)
	if !res.OK() {
		return 0, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		d.logger.Warn("unparsable year page", zap.String("url", yearURL), zap.Error(err))
		return 0, nil
	}
	added := 0
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := extract.Resolve(d.cfg.ArchiveURL, a.AttrOr("href", ""))
		if d.issuePattern.MatchString(href) && d.issueURLs.Add(href) {
			added++
		}
	})
	if err := d.issueURLs.Flush(); err != nil {
		return added, fmt.Errorf("persist issue urls: %w", err)
	}
	metrics.ObserveDiscovered("issue", added)
	d.logger.Debug("issue urls collected", zap.String("year_page", yearURL), zap.Int("new", added))
	return added, nil
}

func (d *Discoverer) collectArticles(ctx context.Context, issueURL string) (bool, error) {
	res := d.issues.Get(ctx, issueURL)
	if !res.OK() {
		return false, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		d.failedIssues.RecordError(issueURL, err.Error())
		return false, nil
	}
	var articles []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if !strings.Contains(href, articleMarker) {
			return
		}
		if abs := extract.Resolve(d.cfg.Origin, href); abs != "" {
			articles = append(articles, abs)
		}
	})
	if len(articles) == 0 {
		d.logger.Warn("issue without article links", zap.String("url", issueURL))
		return false, nil
	}
	d.store.Put(issueURL, articles)
	if err := d.store.Flush(); err != nil {
		return false, fmt.Errorf("persist issues and articles: %w", err)
	}
	metrics.ObserveDiscovered("article", len(articles))
	return true, nil
}

func (d *Discoverer) flushLedgers() error {
	if err := d.failedURLs.Flush(); err != nil {
		return err
	}
	return d.failedIssues.Flush()
}

// ownTextMatches reports whether one of the direct text children of s
// matches re.
func ownTextMatches(s *goquery.Selection, re *regexp.Regexp) bool {
	for c := s.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && re.MatchString(c.Data) {
			return true
		}
	}
	return false
}
