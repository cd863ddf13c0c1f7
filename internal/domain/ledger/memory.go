package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and offline runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry

	// FailAfter, when > 0, makes Insert fail once that many inserts have
	// succeeded. Used to exercise rollback behavior.
	FailAfter int
	inserts   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[uuid.UUID]Entry)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) QueryCandidates(_ context.Context, groupID string, from, to time.Time, amountCents int64) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Entry
	for _, e := range s.entries {
		if e.GroupID != groupID || e.AmountCents != amountCents {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		matches = append(matches, e)
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Date.Equal(matches[j].Date) {
			return matches[i].Date.Before(matches[j].Date)
		}
		return matches[i].ID.String() < matches[j].ID.String()
	})
	return matches, nil
}

func (s *MemoryStore) Insert(_ context.Context, entry Entry) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAfter > 0 && s.inserts >= s.FailAfter {
		return uuid.Nil, fmt.Errorf("insert rejected after %d writes", s.inserts)
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	s.entries[entry.ID] = entry
	s.inserts++
	return entry.ID, nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("ledger entry %s not found", id)
	}
	delete(s.entries, id)
	return nil
}

// Len reports how many entries the store holds.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// All returns a date-ordered snapshot of every entry.
func (s *MemoryStore) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
