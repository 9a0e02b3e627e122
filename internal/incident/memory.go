package incident

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/lineguard/internal/model"
)

// MemoryStore is an in-process Store for tests and ephemeral demos.
type MemoryStore struct {
	mu        sync.RWMutex
	incidents []model.Incident
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, inc model.Incident) (*model.Incident, error) {
	inc.ID = uuid.New().String()
	inc.Timestamp = time.Now().UTC()

	s.mu.Lock()
	s.incidents = append(s.incidents, inc)
	s.mu.Unlock()

	return &inc, nil
}

func (s *MemoryStore) Query(ctx context.Context, daysBack int) ([]model.Incident, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Incident
	for _, inc := range s.incidents {
		if !inc.Timestamp.Before(cutoff) {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (*model.IncidentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &model.IncidentStats{}
	for _, inc := range s.incidents {
		tally(stats, inc)
	}
	return stats, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.incidents = nil
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
