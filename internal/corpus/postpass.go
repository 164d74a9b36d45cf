package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/clock"
	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
)

// Defect reasons for year files that cannot be re-sorted.
const (
	ReasonEmpty   = "empty JSON"
	ReasonInvalid = "invalid JSON"
)

// PostPass re-derives finished year files in place. Both passes are pure
// functions of the file content, so running them again changes nothing.
type PostPass[U any] struct {
	Dir     string
	Pattern *regexp.Regexp
	Order   Order
	Clock   clock.Clock
	Logger  *zap.Logger
}

// YearFiles lists the file names in Dir matching Pattern, sorted.
func (p PostPass[U]) YearFiles() ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p.Dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && p.Pattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// Sort rewrites every year file in canonical order. Empty or undecodable
// files are left alone and reported as defects keyed by file name.
func (p PostPass[U]) Sort() (int, ledger.Defects, error) {
	var defects ledger.Defects
	names, err := p.YearFiles()
	if err != nil {
		return 0, defects, err
	}
	sorted := 0
	for _, name := range names {
		path := filepath.Join(p.Dir, name)
		y, err := ReadYearFile[U](path, p.Order)
		if err != nil {
			reason := ReasonInvalid
			if errors.Is(err, jsonfile.ErrEmpty) || errors.Is(err, ErrNoYearLabel) {
				reason = ReasonEmpty
			}
			p.Logger.Error("year file cannot be sorted",
				zap.String("file", name),
				zap.String("reason", reason),
				zap.Error(err))
			defects.Note(name, "timestamp", p.Clock.Now().Format(ledger.TimestampLayout))
			defects.Note(name, "reason", reason)
			continue
		}
		if err := jsonfile.Write(path, y); err != nil {
			return sorted, defects, fmt.Errorf("rewrite %s: %w", name, err)
		}
		sorted++
		p.Logger.Debug("year file sorted", zap.String("file", name))
	}
	return sorted, defects, nil
}

// Annotate stores each year file's size in KiB in its general metadata.
// The size is that of the annotated file itself, so a second run rewrites
// identical bytes. Files that cannot be read are logged and skipped.
func (p PostPass[U]) Annotate() (int, error) {
	names, err := p.YearFiles()
	if err != nil {
		return 0, err
	}
	annotated := 0
	for _, name := range names {
		path := filepath.Join(p.Dir, name)
		y, err := ReadYearFile[U](path, p.Order)
		if err != nil {
			p.Logger.Error("read year file", zap.String("file", name), zap.Error(err))
			continue
		}
		data, err := encodeWithSize(y)
		if err != nil {
			return annotated, fmt.Errorf("encode %s: %w", name, err)
		}
		if err := jsonfile.WriteBytes(path, data); err != nil {
			return annotated, fmt.Errorf("rewrite %s: %w", name, err)
		}
		annotated++
	}
	return annotated, nil
}

// maxSizePasses bounds the search for a size that survives its own
// encoding. The number only grows or shrinks by a digit between passes.
const maxSizePasses = 4

func encodeWithSize[U any](y *YearFile[U]) ([]byte, error) {
	var kib int64
	if y.General.FileSizeInKibibyte != nil {
		kib = *y.General.FileSizeInKibibyte
	}
	var data []byte
	for range maxSizePasses {
		y.General.FileSizeInKibibyte = &kib
		var err error
		data, err = jsonfile.Marshal(y)
		if err != nil {
			return nil, err
		}
		actual := int64(len(data)) / 1024
		if actual == kib {
			break
		}
		kib = actual
	}
	return data, nil
}
