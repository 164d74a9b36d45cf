// Package download mirrors discovered issues and listing pages onto disk.
//
// Every unit gets a folder holding its own page as index.html plus one file
// per article. Files that already exist are never fetched again, so an
// interrupted run picks up where it stopped.
package download

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/extract"
	"github.com/JakeFAU/magazine-corpus/internal/fetch"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
	"github.com/JakeFAU/magazine-corpus/internal/metrics"
	"github.com/JakeFAU/magazine-corpus/internal/storage/local"
)

// IndexFile is the name under which a unit's own page is stored.
const IndexFile = "index.html"

const (
	htmlSuffix    = ".html"
	maxPathLength = 255
	pathSlack     = 5
)

// Layout maps a unit URL to its folder below the store root.
type Layout interface {
	UnitFolder(unitURL string) string
}

// Report counts the files handled by one run.
type Report struct {
	Units   int
	Fetched int
	Skipped int
	Failed  int
}

// Downloader fetches unit and article pages into a local store.
type Downloader struct {
	issues   *fetch.Fetcher
	articles *fetch.Fetcher
	store    *local.Store
	layout   Layout

	issueFailures   *ledger.Failures
	articleFailures *ledger.Failures
	logger          *zap.Logger
}

// New returns a Downloader. Unit and article failures are recorded into
// separate ledgers, flushed when Run returns.
func New(f *fetch.Fetcher, store *local.Store, layout Layout, issueFailures, articleFailures *ledger.Failures, logger *zap.Logger) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		issues:          f.WithRecorder(issueFailures),
		articles:        f.WithRecorder(articleFailures),
		store:           store,
		layout:          layout,
		issueFailures:   issueFailures,
		articleFailures: articleFailures,
		logger:          logger,
	}
}

// Run downloads every unit of units, keyed by unit URL. Units are handled
// in sorted order. Both failure ledgers are flushed before Run returns, also
// when ctx is canceled.
func (d *Downloader) Run(ctx context.Context, units map[string][]string) (rep Report, err error) {
	defer func() {
		err = errors.Join(err, d.issueFailures.Flush(), d.articleFailures.Flush())
	}()

	keys := make([]string, 0, len(units))
	for k := range units {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, unitURL := range keys {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, fmt.Errorf("download interrupted: %w", ctxErr)
		}
		rep.Units++
		if err := d.unit(ctx, unitURL, units[unitURL], &rep); err != nil {
			return rep, err
		}
	}
	d.logger.Info("download finished",
		zap.Int("units", rep.Units),
		zap.Int("fetched", rep.Fetched),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed))
	return rep, nil
}

func (d *Downloader) unit(ctx context.Context, unitURL string, articleURLs []string, rep *Report) error {
	folder := d.layout.UnitFolder(unitURL)
	logger := d.logger.With(zap.String("unit", unitURL), zap.String("folder", folder))

	res, err := d.file(ctx, d.issues, unitURL, path.Join(folder, IndexFile), "index", rep)
	if err != nil {
		return err
	}
	if res != nil && res.Outcome == fetch.OutcomeExhausted {
		logger.Error("unit page unreachable, skipping its articles")
		return nil
	}

	full, err := d.store.Resolve(folder)
	if err != nil {
		return fmt.Errorf("resolve unit folder: %w", err)
	}
	seen := make(map[string]bool, len(articleURLs))
	for _, articleURL := range articleURLs {
		if seen[articleURL] {
			continue
		}
		seen[articleURL] = true
		name := ArticleFileName(full, articleURL)
		if _, err := d.file(ctx, d.articles, articleURL, path.Join(folder, name), "article", rep); err != nil {
			return err
		}
	}
	return nil
}

// file stores rawURL at rel unless it exists. It returns the fetch result,
// or nil when no request was made.
func (d *Downloader) file(ctx context.Context, f *fetch.Fetcher, rawURL, rel, kind string, rep *Report) (*fetch.Result, error) {
	if d.store.Exists(rel) {
		rep.Skipped++
		metrics.ObserveDownload(kind, "skipped")
		d.logger.Debug("already downloaded", zap.String("url", rawURL), zap.String("path", rel))
		return nil, nil
	}
	res := f.Get(ctx, rawURL)
	if !res.OK() {
		if ctx.Err() != nil {
			return &res, fmt.Errorf("download interrupted: %w", ctx.Err())
		}
		rep.Failed++
		metrics.ObserveDownload(kind, "failed")
		return &res, nil
	}
	if _, err := d.store.PutIfAbsent(rel, res.Body); err != nil {
		return &res, fmt.Errorf("store %s: %w", rel, err)
	}
	rep.Fetched++
	metrics.ObserveDownload(kind, "fetched")
	return &res, nil
}

// ArticleFileName derives the file name of articleURL inside folder: the
// last unescaped path segment without query, shortened on a rune boundary
// so the full path stays within 255 bytes, with ".html" appended unless
// already present.
func ArticleFileName(folder, articleURL string) string {
	base := articleURL
	if u, err := url.Parse(articleURL); err == nil {
		base = u.Path
	} else if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, "/")
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if base == "" {
		base = "article"
	}
	if strings.HasSuffix(strings.ToLower(base), htmlSuffix) {
		base = base[:len(base)-len(htmlSuffix)]
	}
	limit := maxPathLength - len(htmlSuffix) - len(folder) - pathSlack
	return extract.TruncateBytes(base, limit) + htmlSuffix
}
