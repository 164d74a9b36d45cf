package stern

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/clock"
	"github.com/JakeFAU/magazine-corpus/internal/corpus"
	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
	"github.com/JakeFAU/magazine-corpus/internal/metrics"
	"github.com/JakeFAU/magazine-corpus/internal/scheduler"
)

// ExtractConfig tunes the extraction stage.
type ExtractConfig struct {
	Workers    int
	Origin     string
	Provenance Provenance
}

// Extractor turns the downloaded listing folders into one corpus file per
// year, grouped month by month.
type Extractor struct {
	paths  Paths
	cfg    ExtractConfig
	clock  clock.Clock
	logger *zap.Logger
}

// NewExtractor returns an Extractor over the state below paths.Root.
func NewExtractor(paths Paths, cfg ExtractConfig, clk clock.Clock, logger *zap.Logger) *Extractor {
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{paths: paths, cfg: cfg, clock: clk, logger: logger}
}

// Run extracts every year not yet written and flushes the defects it
// collected before returning.
func (e *Extractor) Run(ctx context.Context) (sum corpus.Summary, err error) {
	var defects ledger.Defects
	defer func() {
		if flushErr := ledger.FlushDefects(e.paths.Defects(), defects); flushErr != nil && err == nil {
			err = flushErr
		}
	}()

	years, err := ScanListings(e.paths.RawDir())
	if err != nil {
		return sum, err
	}
	for _, year := range slices.Sorted(maps.Keys(years)) {
		target := e.paths.YearFile(year)
		if jsonfile.Exists(target) {
			sum.YearsSkipped++
			metrics.ObserveYearFile("skipped")
			e.logger.Info("year file exists, skipping", zap.Int("year", year))
			continue
		}
		ys, err := e.extractYear(ctx, year, years[year], target, &defects)
		sum.Add(ys)
		if err != nil {
			return sum, err
		}
	}
	e.logger.Info("extraction finished",
		zap.Int("years_written", sum.YearsWritten),
		zap.Int("years_skipped", sum.YearsSkipped),
		zap.Int("articles", sum.Articles),
		zap.Int("empty", sum.Empty),
		zap.Int("failures", sum.Failures))
	return sum, nil
}

func (e *Extractor) extractYear(ctx context.Context, year int, months map[int][]ListingDir, target string, defects *ledger.Defects) (corpus.Summary, error) {
	now := e.clock.Now()
	yf := corpus.NewYearFile[corpus.Pages](YearLabel(year), corpus.NaturalOrder)
	yf.General = GeneralMetadata(e.cfg.Provenance, now)

	pages := make(map[string]*corpus.Page)
	var jobs []Job
	for _, month := range slices.Sorted(maps.Keys(months)) {
		group := make(corpus.Pages, len(months[month]))
		for _, dir := range months[month] {
			listingURL := dir.URL(e.cfg.Origin)
			page := dir.Record()
			group[listingURL] = page
			pages[listingURL] = page

			listingJobs, err := BuildJobs(dir, e.cfg.Origin)
			if err != nil {
				return corpus.Summary{}, err
			}
			if len(listingJobs) == 0 {
				e.logger.Debug("listing without articles", zap.String("listing", listingURL))
			}
			jobs = append(jobs, listingJobs...)
		}
		yf.Units[MonthKey(year, month)] = group
	}

	pool := scheduler.Pool[Job, corpus.Outcome]{
		Workers: e.cfg.Workers,
		Work: func(j Job) corpus.Outcome {
			return ExtractArticle(j, now)
		},
		Recover: func(j Job, v any) corpus.Outcome {
			return corpus.Outcome{UnitKey: j.ListingURL, File: j.File, Failure: fmt.Sprintf("error: %v", v)}
		},
		Logger: e.logger,
	}
	outcomes := pool.Run(ctx, jobs)
	if err := ctx.Err(); err != nil {
		return corpus.Summary{}, fmt.Errorf("extraction of %d interrupted: %w", year, err)
	}

	sum := corpus.Merge(outcomes, func(key string) corpus.ArticleHolder {
		if page, ok := pages[key]; ok {
			return page
		}
		return nil
	}, defects, e.logger)

	written, err := corpus.WriteYear(target, yf)
	if err != nil {
		return sum, err
	}
	if written {
		sum.YearsWritten++
	} else {
		sum.YearsSkipped++
	}
	e.logger.Info("year written",
		zap.Int("year", year),
		zap.Int("months", len(yf.Units)),
		zap.Int("listings", len(pages)),
		zap.Int("articles", sum.Articles))
	return sum, nil
}

// Finalize sorts every year file, records unsortable files as defects, then
// annotates the file sizes.
func Finalize(paths Paths, clk clock.Clock, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	pass := corpus.PostPass[corpus.Pages]{
		Dir:     paths.CorpusDir(),
		Pattern: YearFilePattern,
		Order:   corpus.NaturalOrder,
		Clock:   clk,
		Logger:  logger,
	}
	sorted, defects, err := pass.Sort()
	if err != nil {
		return err
	}
	if err := ledger.FlushDefects(paths.Defects(), defects); err != nil {
		return err
	}
	annotated, err := pass.Annotate()
	if err != nil {
		return err
	}
	logger.Info("year files finalized", zap.Int("sorted", sorted), zap.Int("annotated", annotated), zap.Bool("defects", !defects.Empty()))
	return nil
}
