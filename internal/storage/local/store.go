// Package local implements the skip-if-exists file store used for raw pages.
package local

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
)

// Config captures the parameters for the local filesystem store.
type Config struct {
	// BaseDir is the root directory where pages are stored.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// Store writes raw pages below a base directory. Every write is
// idempotent: an existing file is never replaced.
type Store struct {
	baseDir string
}

// New creates a store rooted at cfg.BaseDir, creating it if needed.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat base directory: %w", err)
		}
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	return &Store{baseDir: filepath.Clean(cfg.BaseDir)}, nil
}

// BaseDir returns the store root.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Resolve maps a store-relative path to an absolute location, rejecting
// paths that escape the base directory.
func (s *Store) Resolve(rel string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", fmt.Errorf("path is required")
	}
	full := filepath.Clean(filepath.Join(s.baseDir, rel))
	if !strings.HasPrefix(full, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %s", rel)
	}
	return full, nil
}

// Exists reports whether rel is already stored.
func (s *Store) Exists(rel string) bool {
	full, err := s.Resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// PutIfAbsent stores data at rel unless a file is already there. It
// reports whether the file was written.
func (s *Store) PutIfAbsent(rel string, data []byte) (bool, error) {
	full, err := s.Resolve(rel)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err == nil {
		return false, nil
	}
	if err := jsonfile.WriteBytes(full, data); err != nil {
		return false, fmt.Errorf("failed to write file: %w", err)
	}
	return true, nil
}
