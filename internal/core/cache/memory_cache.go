package cache

import (
	"context"
	"sync"

	"github.com/ajaykarthicks/StudyAI/internal/core"
)

var _ core.CacheStore = (*MemoryStore)(nil)

// MemoryStore is a process-local text cache. It backs deployments without
// object storage configured, and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.entries[id]
	return text, ok
}

func (s *MemoryStore) Put(_ context.Context, id string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = text
	return nil
}
