package urlset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Lines is an append-only text file with one URL per line.
type Lines struct {
	path    string
	seen    map[string]struct{}
	all     []string
	pending []string
}

// LoadLines reads path, ignoring blank lines and duplicates.
func LoadLines(path string) (*Lines, error) {
	l := &Lines{path: path, seen: make(map[string]struct{})}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, ok := l.seen[line]; ok {
			continue
		}
		l.seen[line] = struct{}{}
		l.all = append(l.all, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return l, nil
}

// Add queues u for the next Flush. It reports false for a known URL.
func (l *Lines) Add(u string) bool {
	if _, ok := l.seen[u]; ok {
		return false
	}
	l.seen[u] = struct{}{}
	l.all = append(l.all, u)
	l.pending = append(l.pending, u)
	return true
}

// Contains reports whether u is known.
func (l *Lines) Contains(u string) bool {
	_, ok := l.seen[u]
	return ok
}

// All returns every known URL in insertion order.
func (l *Lines) All() []string {
	return slices.Clone(l.all)
}

// Flush appends the queued URLs to the file.
func (l *Lines) Flush() error {
	if len(l.pending) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Clean(l.path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	w := bufio.NewWriter(f)
	for _, u := range l.pending {
		if _, err := w.WriteString(u + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("append %s: %w", l.path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", l.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", l.path, err)
	}
	l.pending = nil
	return nil
}
