package corpus

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
	"github.com/JakeFAU/magazine-corpus/internal/metrics"
)

// Outcome is the result of one article extraction job. Article is nil when
// the document yielded nothing; Failure is set when the job itself failed.
type Outcome struct {
	UnitKey    string
	ArticleKey string
	File       string
	Article    *Article
	Failure    string
	Defects    ledger.Defects
}

// ArticleHolder is a unit record that collects articles.
type ArticleHolder interface {
	ArticleSet() Articles
}

// Summary counts what the assembler did over a run.
type Summary struct {
	YearsWritten int
	YearsSkipped int
	Articles     int
	Empty        int
	Failures     int
}

// Add accumulates other into s.
func (s *Summary) Add(other Summary) {
	s.YearsWritten += other.YearsWritten
	s.YearsSkipped += other.YearsSkipped
	s.Articles += other.Articles
	s.Empty += other.Empty
	s.Failures += other.Failures
}

// Merge files every outcome under its unit and folds the job defects into
// defects. lookup returns nil for an unknown unit key.
func Merge(outcomes []Outcome, lookup func(unitKey string) ArticleHolder, defects *ledger.Defects, logger *zap.Logger) Summary {
	var s Summary
	for _, o := range outcomes {
		defects.Merge(o.Defects)
		switch {
		case o.Failure != "":
			s.Failures++
			ref := o.File
			if ref == "" {
				ref = o.ArticleKey
			}
			defects.Article(o.UnitKey, ref, o.Failure)
			logger.Warn("article extraction failed",
				zap.String("unit", o.UnitKey),
				zap.String("file", o.File),
				zap.String("reason", o.Failure))
		case o.Article == nil:
			s.Empty++
			defects.Note(o.UnitKey, ledger.CategoryArticle, "empty article found")
			logger.Warn("empty article",
				zap.String("unit", o.UnitKey),
				zap.String("article", o.ArticleKey))
		default:
			unit := lookup(o.UnitKey)
			if unit == nil {
				s.Failures++
				defects.Note(o.UnitKey, ledger.CategoryIssue, "article without a base record")
				logger.Warn("article for unknown unit",
					zap.String("unit", o.UnitKey),
					zap.String("article", o.ArticleKey))
				continue
			}
			unit.ArticleSet()[o.ArticleKey] = o.Article
			s.Articles++
		}
	}
	return s
}

// WriteYear writes y to path unless a file is already there. It reports
// whether the file was written.
func WriteYear[U any](path string, y *YearFile[U]) (bool, error) {
	if jsonfile.Exists(path) {
		metrics.ObserveYearFile("skipped")
		return false, nil
	}
	if err := jsonfile.Write(path, y); err != nil {
		metrics.ObserveYearFile("failed")
		return false, fmt.Errorf("write year file: %w", err)
	}
	metrics.ObserveYearFile("written")
	return true, nil
}
