package snapshot

import (
	"context"
	"sync"

	"trade-journal-go/internal/models"
)

// MemoryStore caches snapshots in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]models.PerformanceMetrics
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string]models.PerformanceMetrics)}
}

func (s *MemoryStore) Get(ctx context.Context, accountID, period string) (models.PerformanceMetrics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	periods, ok := s.entries[accountID]
	if !ok {
		return models.PerformanceMetrics{}, false, nil
	}
	metrics, ok := periods[period]
	return metrics, ok, nil
}

func (s *MemoryStore) Put(ctx context.Context, accountID, period string, metrics models.PerformanceMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	periods, ok := s.entries[accountID]
	if !ok {
		periods = make(map[string]models.PerformanceMetrics)
		s.entries[accountID] = periods
	}
	periods[period] = metrics
	return nil
}

func (s *MemoryStore) Invalidate(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, accountID)
	return nil
}
