// Package urlset persists the URL sets produced by discovery.
package urlset

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
)

// Order compares two unit URLs.
type Order func(a, b string) int

// Store maps an issue or listing URL to the article URLs found on it.
// It is written in Order after every unit so a crash loses at most one unit.
type Store struct {
	path  string
	order Order

	mu    sync.Mutex
	units map[string][]string
}

// Load opens the store at path. A missing file yields an empty store.
func Load(path string, order Order) (*Store, error) {
	units := make(map[string][]string)
	if _, err := jsonfile.Read(path, &units); err != nil && !errors.Is(err, jsonfile.ErrEmpty) {
		return nil, fmt.Errorf("load url set: %w", err)
	}
	if order == nil {
		order = cmp.Compare[string]
	}
	return &Store{path: path, order: order, units: units}, nil
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Has reports whether unit was already discovered.
func (s *Store) Has(unit string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.units[unit]
	return ok
}

// Put stores the article URLs of unit, dropping duplicates.
func (s *Store) Put(unit string, articles []string) {
	seen := make(map[string]struct{}, len(articles))
	clean := make([]string, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		clean = append(clean, a)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[unit] = clean
}

// Get returns the article URLs of unit.
func (s *Store) Get(unit string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.units[unit])
}

// Len returns the number of units.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.units)
}

// Keys returns the unit URLs in Order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keysLocked()
}

func (s *Store) keysLocked() []string {
	keys := make([]string, 0, len(s.units))
	for k := range s.units {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := s.order(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys
}

// Units returns a copy of the whole mapping.
func (s *Store) Units() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]string, len(s.units))
	for k, v := range s.units {
		out[k] = slices.Clone(v)
	}
	return out
}

// Flush writes the store in Order.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := jsonfile.OrderedMap(s.units, s.keysLocked())
	if err != nil {
		return err
	}
	if err := jsonfile.Write(s.path, obj); err != nil {
		return fmt.Errorf("write url set: %w", err)
	}
	return nil
}
