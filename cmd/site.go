package cmd

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/clock"
	"github.com/JakeFAU/magazine-corpus/internal/config"
	"github.com/JakeFAU/magazine-corpus/internal/download"
	"github.com/JakeFAU/magazine-corpus/internal/fetch"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
	"github.com/JakeFAU/magazine-corpus/internal/site/spiegel"
	"github.com/JakeFAU/magazine-corpus/internal/site/stern"
	"github.com/JakeFAU/magazine-corpus/internal/storage/local"
	"github.com/JakeFAU/magazine-corpus/internal/urlset"
)

// sitePipeline binds the generic stages to one archive.
type sitePipeline interface {
	Discover(ctx context.Context, f *fetch.Fetcher, logger *zap.Logger) error
	Download(ctx context.Context, f *fetch.Fetcher, logger *zap.Logger) error
	Extract(ctx context.Context, logger *zap.Logger) error
	Finalize(logger *zap.Logger) error
	CorpusDir() string
	YearFilePattern() *regexp.Regexp
	LogFile() string
}

func newSitePipeline(site string, cfg config.Config, clk clock.Clock) sitePipeline {
	if site == config.SiteStern {
		return &sternPipeline{cfg: cfg, paths: stern.Paths{Root: cfg.Data.Root}, clock: clk}
	}
	return &spiegelPipeline{cfg: cfg, paths: spiegel.Paths{Root: cfg.Data.Root}, clock: clk}
}

func downloadUnits(ctx context.Context, f *fetch.Fetcher, root string, layout download.Layout,
	units *urlset.Store, unitFailures, articleFailures *ledger.Failures, logger *zap.Logger,
) error {
	store, err := local.New(local.Config{BaseDir: root})
	if err != nil {
		return fmt.Errorf("open raw store: %w", err)
	}
	_, err = download.New(f, store, layout, unitFailures, articleFailures, logger).Run(ctx, units.Units())
	return err
}

type spiegelPipeline struct {
	cfg   config.Config
	paths spiegel.Paths
	clock clock.Clock
}

func (p *spiegelPipeline) Discover(ctx context.Context, f *fetch.Fetcher, logger *zap.Logger) error {
	lines, err := urlset.LoadLines(p.paths.IssueURLs())
	if err != nil {
		return err
	}
	store, err := urlset.Load(p.paths.IssuesAndArticles(), spiegel.IssueURLOrder)
	if err != nil {
		return err
	}
	d := spiegel.NewDiscoverer(
		spiegel.DiscoverConfig{ArchiveURL: p.cfg.Spiegel.ArchiveURL, Origin: p.cfg.Spiegel.Origin},
		f,
		ledger.NewFailures(p.paths.FailedURLs(), p.clock),
		ledger.NewFailures(p.paths.FailedIssues(), p.clock),
		lines, store, logger,
	)
	_, err = d.Run(ctx)
	return err
}

func (p *spiegelPipeline) Download(ctx context.Context, f *fetch.Fetcher, logger *zap.Logger) error {
	units, err := urlset.Load(p.paths.IssuesAndArticles(), spiegel.IssueURLOrder)
	if err != nil {
		return err
	}
	return downloadUnits(ctx, f, p.cfg.Data.Root, spiegel.Layout{}, units,
		ledger.NewFailures(p.paths.FailedDownloadIssues(), p.clock),
		ledger.NewFailures(p.paths.FailedDownloadArticles(), p.clock),
		logger)
}

func (p *spiegelPipeline) Extract(ctx context.Context, logger *zap.Logger) error {
	ex := spiegel.NewExtractor(p.paths, spiegel.ExtractConfig{
		Workers:    p.cfg.Extract.Workers,
		Origin:     p.cfg.Spiegel.Origin,
		Provenance: spiegel.Provenance(p.cfg.Provenance),
	}, p.clock, logger)
	_, err := ex.Run(ctx)
	return err
}

func (p *spiegelPipeline) Finalize(logger *zap.Logger) error {
	return spiegel.Finalize(p.paths, p.clock, logger)
}

func (p *spiegelPipeline) CorpusDir() string               { return p.paths.CorpusDir() }
func (p *spiegelPipeline) YearFilePattern() *regexp.Regexp { return spiegel.YearFilePattern }
func (p *spiegelPipeline) LogFile() string                 { return p.paths.LogFile() }

type sternPipeline struct {
	cfg   config.Config
	paths stern.Paths
	clock clock.Clock
}

func (p *sternPipeline) Discover(ctx context.Context, f *fetch.Fetcher, logger *zap.Logger) error {
	lines, err := urlset.LoadLines(p.paths.ListingURLs())
	if err != nil {
		return err
	}
	store, err := urlset.Load(p.paths.ListingsAndArticles(), stern.ListingOrder)
	if err != nil {
		return err
	}
	d := stern.NewDiscoverer(stern.DiscoverConfig{
		ArchiveURL: p.cfg.Stern.ArchiveURL,
		Origin:     p.cfg.Stern.Origin,
		Denylist:   p.cfg.Stern.Denylist,
		MonthPause: p.cfg.Stern.MonthPause,
	}, f, ledger.NewFailures(p.paths.FailedURLs(), p.clock), lines, store, p.paths.Defects(), logger)
	_, err = d.Run(ctx)
	return err
}

func (p *sternPipeline) Download(ctx context.Context, f *fetch.Fetcher, logger *zap.Logger) error {
	units, err := urlset.Load(p.paths.ListingsAndArticles(), stern.ListingOrder)
	if err != nil {
		return err
	}
	return downloadUnits(ctx, f, p.cfg.Data.Root, stern.Layout{}, units,
		ledger.NewFailures(p.paths.FailedDownloadListings(), p.clock),
		ledger.NewFailures(p.paths.FailedDownloadArticles(), p.clock),
		logger)
}

func (p *sternPipeline) Extract(ctx context.Context, logger *zap.Logger) error {
	ex := stern.NewExtractor(p.paths, stern.ExtractConfig{
		Workers:    p.cfg.Extract.Workers,
		Origin:     p.cfg.Stern.Origin,
		Provenance: stern.Provenance(p.cfg.Provenance),
	}, p.clock, logger)
	_, err := ex.Run(ctx)
	return err
}

func (p *sternPipeline) Finalize(logger *zap.Logger) error {
	return stern.Finalize(p.paths, p.clock, logger)
}

func (p *sternPipeline) CorpusDir() string               { return p.paths.CorpusDir() }
func (p *sternPipeline) YearFilePattern() *regexp.Regexp { return stern.YearFilePattern }
func (p *sternPipeline) LogFile() string                 { return p.paths.LogFile() }
