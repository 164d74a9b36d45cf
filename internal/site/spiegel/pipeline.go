package spiegel

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

// Extractor turns the downloaded issue folders into one corpus file per
// year. Years whose file already exists are skipped.
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

// Run extracts every year not yet written. Defects collected on the way are
// flushed into the site ledger before Run returns.
func (e *Extractor) Run(ctx context.Context) (sum corpus.Summary, err error) {
	var defects ledger.Defects
	defer func() {
		if flushErr := ledger.FlushDefects(e.paths.Defects(), defects); flushErr != nil && err == nil {
			err = flushErr
		}
	}()

	years, err := ScanIssues(e.paths.RawDir())
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

func (e *Extractor) extractYear(ctx context.Context, year int, dirs []IssueDir, target string, defects *ledger.Defects) (corpus.Summary, error) {
	now := e.clock.Now()
	issues := make(map[string]*corpus.Issue, len(dirs))
	var jobs []Job
	for _, dir := range dirs {
		key := dir.Key()
		res, err := ExtractIssue(indexPath(dir), key, e.cfg.Origin)
		if err != nil {
			return corpus.Summary{}, err
		}
		defects.Merge(res.Defects)
		if !res.Found {
			defects.Note(key, ledger.CategoryIssueMetadata, fmt.Sprintf("no index.html found for [%s]", key))
			e.logger.Warn("issue without index page, skipping", zap.String("issue", key))
			continue
		}
		if res.Issue == nil {
			e.logger.Error("empty issue page, skipping", zap.String("issue", key))
			continue
		}
		issues[key] = res.Issue
		issueJobs, jobDefects, err := BuildJobs(dir, res)
		if err != nil {
			return corpus.Summary{}, err
		}
		defects.Merge(jobDefects)
		jobs = append(jobs, issueJobs...)
	}

	pool := scheduler.Pool[Job, corpus.Outcome]{
		Workers: e.cfg.Workers,
		Work: func(j Job) corpus.Outcome {
			return ExtractArticle(j, now)
		},
		Recover: func(j Job, v any) corpus.Outcome {
			return corpus.Outcome{UnitKey: j.IssueKey, File: j.File, Failure: fmt.Sprintf("error: %v", v)}
		},
		Logger: e.logger,
	}
	outcomes := pool.Run(ctx, jobs)
	if err := ctx.Err(); err != nil {
		return corpus.Summary{}, fmt.Errorf("extraction of %d interrupted: %w", year, err)
	}

	sum := corpus.Merge(outcomes, func(key string) corpus.ArticleHolder {
		if issue, ok := issues[key]; ok {
			return issue
		}
		return nil
	}, defects, e.logger)

	yf := corpus.NewYearFile[*corpus.Issue](YearLabel(year), corpus.IssueOrder)
	yf.General = GeneralMetadata(e.cfg.Provenance, now)
	yf.Units = issues
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
		zap.Int("issues", len(issues)),
		zap.Int("articles", sum.Articles))
	return sum, nil
}

// Finalize sorts every year file into canonical order, records the files
// that could not be sorted, then annotates the file sizes.
func Finalize(paths Paths, clk clock.Clock, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	pass := corpus.PostPass[*corpus.Issue]{
		Dir:     paths.CorpusDir(),
		Pattern: YearFilePattern,
		Order:   corpus.IssueOrder,
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
