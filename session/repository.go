package session

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrConflict is returned by Save when a record with the same id but a
// different owner already exists.
var ErrConflict = errors.New("session record conflict")

// Repository is durable storage for session records. Every call may block on
// I/O and may fail independently; callers must treat failures as "not found".
type Repository interface {
	Search(ctx context.Context, filter Filter) ([]Record, error)
	Save(ctx context.Context, rec Record) error
	Remove(ctx context.Context, rec Record) error
}

// MemoryRepository is a process-local Repository. It backs the default server
// mode and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Record)}
}

// Search returns matching records ordered by creation time.
func (m *MemoryRepository) Search(ctx context.Context, filter Filter) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if filter.SessionID != "" {
		rec, ok := m.records[filter.SessionID]
		if !ok || !filter.Match(rec) {
			return []Record{}, nil
		}
		return []Record{rec}, nil
	}

	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		if filter.Match(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Save stores rec. Saving an existing id for the same user overwrites it.
func (m *MemoryRepository) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.UserID == "" {
		return ErrInvalidUserID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.records[rec.SessionID]; ok && prev.UserID != rec.UserID {
		return ErrConflict
	}
	m.records[rec.SessionID] = rec
	return nil
}

// Remove deletes rec by session id. Removing a missing record is not an error.
func (m *MemoryRepository) Remove(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.records, rec.SessionID)
	m.mu.Unlock()
	return nil
}
