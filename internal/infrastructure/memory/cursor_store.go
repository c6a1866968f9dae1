package memory

import (
	"context"
	"sync"

	"mealplan-service/internal/domain/repository"
)

// CursorStore keeps day-rollover cursors in process memory.
// Used for single-replica deployments; a restart costs one redundant pass.
// Only cursors of the latest date seen are retained; an evicted cursor reads
// as never checked, like an expired Redis key.
type CursorStore struct {
	mu     sync.RWMutex
	dates  map[string]string
	latest string
}

var _ repository.CursorStore = (*CursorStore)(nil)

func NewCursorStore() *CursorStore {
	return &CursorStore{dates: make(map[string]string)}
}

func (s *CursorStore) LastChecked(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dates[key], nil
}

func (s *CursorStore) MarkChecked(ctx context.Context, key, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if date < s.latest {
		return nil
	}

	if date > s.latest {
		s.latest = date
		for k, d := range s.dates {
			if d < date {
				delete(s.dates, k)
			}
		}
	}

	s.dates[key] = date
	return nil
}
