// Package ledger implements the failure and defect ledgers.
//
// Both ledgers are key/value JSON documents that only ever grow: a flush
// merges the in-memory entries over whatever the file already holds, so
// flushing the same entries twice has the same effect as flushing once.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/JakeFAU/magazine-corpus/internal/clock"
	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
)

// TimestampLayout is the layout of every ledger timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Entry is one failed fetch. Exactly one of StatusCode and Error is set.
type Entry struct {
	Timestamp  string `json:"timestamp"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Failures accumulates failed URLs or keys until Flush. It is safe for
// concurrent use.
type Failures struct {
	path  string
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]Entry
}

// NewFailures returns a ledger persisted at path.
func NewFailures(path string, clk clock.Clock) *Failures {
	return &Failures{
		path:    path,
		clock:   clk,
		entries: make(map[string]Entry),
	}
}

// Path returns the ledger file location.
func (f *Failures) Path() string {
	return f.path
}

// RecordStatus records a non-2xx response for key.
func (f *Failures) RecordStatus(key string, statusCode int) {
	f.put(key, Entry{Timestamp: f.now(), StatusCode: statusCode})
}

// RecordError records a failure without a usable response for key.
func (f *Failures) RecordError(key string, reason string) {
	f.put(key, Entry{Timestamp: f.now(), Error: reason})
}

func (f *Failures) put(key string, e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = e
}

func (f *Failures) now() string {
	return f.clock.Now().Format(TimestampLayout)
}

// Len returns the number of pending entries.
func (f *Failures) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// Entries returns a copy of the pending entries.
func (f *Failures) Entries() map[string]Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]Entry, len(f.entries))
	for k, v := range f.entries {
		out[k] = v
	}
	return out
}

// Flush merges the pending entries into the ledger file. Existing keys that
// were not re-recorded are kept untouched. A flush with nothing pending
// leaves the file alone.
func (f *Failures) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return nil
	}

	merged := make(map[string]json.RawMessage)
	if _, err := jsonfile.Read(f.path, &merged); err != nil && !errors.Is(err, jsonfile.ErrEmpty) {
		return fmt.Errorf("load failure ledger: %w", err)
	}
	for key, entry := range f.entries {
		raw, err := jsonfile.MarshalCompact(entry)
		if err != nil {
			return fmt.Errorf("encode ledger entry: %w", err)
		}
		merged[key] = raw
	}
	if err := jsonfile.Write(f.path, merged); err != nil {
		return fmt.Errorf("write failure ledger: %w", err)
	}
	return nil
}
