package engine

import (
	"sync"
	"time"

	"withdraw_bot/internal/domain"
)

// sessionEntry serialises transitions for one user. removed is set, under
// mu, when the sweeper drops the entry so a waiter can retry with a fresh one.
type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
	removed bool
}

type sessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
}

func newSessionStore() *sessionStore {
	return &sessionStore{entries: make(map[string]*sessionEntry)}
}

func (s *sessionStore) lookup(userID string, create bool) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok && create {
		entry = &sessionEntry{session: domain.NewSession(userID)}
		s.entries[userID] = entry
	}
	return entry
}

// acquire returns the user's entry locked. The caller must release it.
func (s *sessionStore) acquire(userID string) *sessionEntry {
	for {
		entry := s.lookup(userID, true)
		entry.mu.Lock()
		if !entry.removed {
			return entry
		}
		entry.mu.Unlock()
	}
}

func (s *sessionStore) release(entry *sessionEntry) {
	entry.mu.Unlock()
}

func (s *sessionStore) get(userID string) (domain.Session, bool) {
	entry := s.lookup(userID, false)
	if entry == nil {
		return domain.Session{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.removed {
		return domain.Session{}, false
	}
	return *entry.session, true
}

// expire drops sessions untouched since cutoff. Sessions mid-transition are
// skipped and picked up by a later sweep.
func (s *sessionStore) expire(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for userID, entry := range s.entries {
		if !entry.mu.TryLock() {
			continue
		}
		if entry.session.UpdatedAt.Before(cutoff) {
			entry.session.Reset()
			entry.removed = true
			delete(s.entries, userID)
			expired++
		}
		entry.mu.Unlock()
	}
	return expired
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
