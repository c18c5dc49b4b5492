package runlog

import (
	"context"
	"slices"
	"sync"

	"github.com/sells-group/autodoc/internal/model"
)

// MemoryStore keeps the run log in process memory. Useful for tests and
// for ad hoc runs where no history should be kept.
type MemoryStore struct {
	mu      sync.Mutex
	entries []model.LogEntry
}

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Migrate(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Append(_ context.Context, entry model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.GeneratedAt = entry.GeneratedAt.UTC()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) ReadAll(_ context.Context) ([]model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries), nil
}

func (s *MemoryStore) Stats(_ context.Context) (*model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeStats(s.entries), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
