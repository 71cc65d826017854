package session

import (
	"sync"
	"time"
)

// Store is the in-memory session table used by cookie-session strategies.
//
// Create and Delete are serialized by a write lock; Lookup takes the read lock
// so concurrent lookups do not block each other. Store performs no I/O.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string]Record)}
}

// Create inserts a session for userID stamped with the current time.
func (s *Store) Create(userID string) (string, bool) {
	return s.CreateAt(userID, time.Now())
}

// CreateAt inserts a session for userID stamped with now. It returns false when
// userID is empty or id generation fails.
func (s *Store) CreateAt(userID string, now time.Time) (string, bool) {
	rec, err := NewRecord(userID, now)
	if err != nil {
		return "", false
	}

	s.mu.Lock()
	s.records[rec.SessionID] = rec
	s.mu.Unlock()

	return rec.SessionID, true
}

// Lookup returns a copy of the record for sessionID.
func (s *Store) Lookup(sessionID string) (Record, bool) {
	if sessionID == "" {
		return Record{}, false
	}

	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()

	return rec, ok
}

// Delete removes sessionID and reports whether a record existed.
func (s *Store) Delete(sessionID string) bool {
	if sessionID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[sessionID]; !ok {
		return false
	}
	delete(s.records, sessionID)
	return true
}

// Len returns the number of records currently held, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
