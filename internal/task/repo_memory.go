package task

import (
	"context"
	"sync"
)

// MemoryStorage keeps values in process memory (dev/test use).
type MemoryStorage struct {
	mu     sync.RWMutex
	items  map[string]string
	writes int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key, value string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
	s.writes++
	return nil
}

// Writes reports how many Set calls have succeeded.
func (s *MemoryStorage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
