package server

import (
	"sync"
	"time"
)

// Status tracks the stage a process is running. It is safe for concurrent
// use.
type Status struct {
	mu       sync.RWMutex
	snapshot StatusSnapshot
}

// StatusSnapshot is the JSON view of a Status.
type StatusSnapshot struct {
	RunID     string     `json:"run_id,omitempty"`
	Site      string     `json:"site,omitempty"`
	Stage     string     `json:"stage,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Done      []string   `json:"done,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// NewStatus returns a Status for one run.
func NewStatus(runID, site string) *Status {
	return &Status{snapshot: StatusSnapshot{RunID: runID, Site: site}}
}

// Begin marks stage as running since now.
func (s *Status) Begin(stage string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Stage = stage
	s.snapshot.StartedAt = &now
}

// End marks the running stage as finished. A non-nil err is kept and the
// stage stays current.
func (s *Status) End(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snapshot.Error = err.Error()
		return
	}
	if s.snapshot.Stage != "" {
		s.snapshot.Done = append(s.snapshot.Done, s.snapshot.Stage)
	}
	s.snapshot.Stage = ""
	s.snapshot.StartedAt = nil
}

// Snapshot returns a copy of the current state.
func (s *Status) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snapshot
	out.Done = append([]string(nil), s.snapshot.Done...)
	return out
}
