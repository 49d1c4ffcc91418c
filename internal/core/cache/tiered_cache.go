package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ajaykarthicks/StudyAI/internal/core"
)

const defaultMemoryEntries = 128

var _ core.CacheStore = (*TieredStore)(nil)

// TieredStore puts a bounded in-process LRU in front of a backing store so
// repeat lookups for hot documents skip the network round-trip. Reads promote
// backing hits into memory; writes go to both tiers.
type TieredStore struct {
	mem     *lru.Cache[string, string]
	backing core.CacheStore
}

func NewTieredStore(backing core.CacheStore, memoryEntries int) (*TieredStore, error) {
	if memoryEntries <= 0 {
		memoryEntries = defaultMemoryEntries
	}
	mem, err := lru.New[string, string](memoryEntries)
	if err != nil {
		return nil, err
	}
	return &TieredStore{mem: mem, backing: backing}, nil
}

func (s *TieredStore) Get(ctx context.Context, id string) (string, bool) {
	if text, ok := s.mem.Get(id); ok {
		return text, true
	}
	text, ok := s.backing.Get(ctx, id)
	if ok {
		s.mem.Add(id, text)
	}
	return text, ok
}

func (s *TieredStore) Put(ctx context.Context, id string, text string) error {
	s.mem.Add(id, text)
	return s.backing.Put(ctx, id, text)
}
