// Package publish mirrors finished year files into an object store.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/metrics"
)

// ContentType is set on every uploaded year file.
const ContentType = "application/json; charset=utf-8"

// BlobStore receives uploaded objects and returns their URI.
type BlobStore interface {
	PutObject(ctx context.Context, name string, contentType string, r io.Reader) (string, error)
}

// Upload is one published file.
type Upload struct {
	Name string
	URI  string
}

// Run uploads every file in dir whose name matches pattern, in name order.
// The first failed upload stops the run; files uploaded before it are
// returned.
func Run(ctx context.Context, dir string, pattern *regexp.Regexp, store BlobStore, logger *zap.Logger) ([]Upload, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && pattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	var out []Upload
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("publish interrupted: %w", err)
		}
		uri, err := upload(ctx, store, filepath.Join(dir, name), name)
		if err != nil {
			return out, err
		}
		metrics.ObservePublished()
		logger.Info("year file published", zap.String("file", name), zap.String("uri", uri))
		out = append(out, Upload{Name: name, URI: uri})
	}
	return out, nil
}

func upload(ctx context.Context, store BlobStore, path, name string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()
	uri, err := store.PutObject(ctx, name, ContentType, f)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return uri, nil
}
