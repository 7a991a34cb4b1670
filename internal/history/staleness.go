package history

import "sync"

const defaultStaleAfter = 3

// Staleness tracks how many fetches in a row have failed. Once the run
// reaches the limit the last rendered rows are shown as stale. It never
// delays polling.
type Staleness struct {
	mu       sync.Mutex
	limit    int
	failures int
}

// NewStaleness creates a tracker that turns stale after limit failures in a
// row. A non-positive limit uses the default of 3.
func NewStaleness(limit int) *Staleness {
	if limit <= 0 {
		limit = defaultStaleAfter
	}
	return &Staleness{limit: limit}
}

// RecordFailure counts a failed fetch and reports whether the rows are now
// stale.
func (s *Staleness) RecordFailure() (stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	return s.failures >= s.limit
}

// RecordSuccess ends the failure run.
func (s *Staleness) RecordSuccess() {
	s.mu.Lock()
	s.failures = 0
	s.mu.Unlock()
}

// IsStale reports whether the current failure run has reached the limit.
func (s *Staleness) IsStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures >= s.limit
}

// Failures returns the length of the current failure run.
func (s *Staleness) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}
