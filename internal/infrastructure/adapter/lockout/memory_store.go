// Package lockout holds security.LockoutStore implementations that live
// outside the relational database.
package lockout

import (
	"context"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/security"
)

type entry struct {
	failures    int
	lastFailure time.Time
}

// MemoryStore keeps failure counts in process memory.
// Counts are lost when the process exits, so it only suits long-running
// processes and tests.
type MemoryStore struct {
	mu           sync.Mutex
	entries      map[string]entry
	window       coreport.Duration
	timeProvider coreport.TimeProvider
}

var _ security.LockoutStore = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store. A zero window keeps counts until Reset.
func NewMemoryStore(timeProvider coreport.TimeProvider, window coreport.Duration) *MemoryStore {
	return &MemoryStore{
		entries:      make(map[string]entry),
		window:       window,
		timeProvider: timeProvider,
	}
}

func (s *MemoryStore) expired(e entry, now time.Time) bool {
	return s.window > 0 && now.Sub(e.lastFailure) > s.window.Std()
}

// Failures returns the current consecutive failure count for key
func (s *MemoryStore) Failures(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.expired(e, s.timeProvider.Now()) {
		return 0, nil
	}
	return e.failures, nil
}

// RecordFailure increments the failure count and returns the new value
func (s *MemoryStore) RecordFailure(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeProvider.Now()
	e := s.entries[key]
	if s.expired(e, now) {
		e.failures = 0
	}
	e.failures++
	e.lastFailure = now
	s.entries[key] = e
	return e.failures, nil
}

// Reset clears the failure count for key
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
