package alias

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store for tests and offline runs.
type MemoryStore struct {
	mu      sync.RWMutex
	aliases map[string]Alias
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{aliases: make(map[string]Alias)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Lookup(_ context.Context, normalizedDescription string) (*Alias, error) {
	key := NormalizeKey(normalizedDescription)
	if key == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.aliases[key]; ok {
		found := a
		return &found, nil
	}
	return nil, nil
}

func (s *MemoryStore) Create(_ context.Context, originalText, aliasName, category string) (*Alias, error) {
	key := NormalizeKey(originalText)
	if key == "" {
		return nil, fmt.Errorf("merchant text normalizes to empty key")
	}

	a := Alias{Key: key, Name: aliasName, Original: originalText, Category: category}
	s.mu.Lock()
	s.aliases[key] = a
	s.mu.Unlock()
	return &a, nil
}
