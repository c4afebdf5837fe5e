package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/crisphq/crisp-interview/internal/models"
)

// MemoryStore keeps the snapshot in process memory. Used when no Redis
// is configured (single-instance dev runs) and in tests. Snapshots go
// through JSON so serialization behaves the same as the Redis store.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Save(_ context.Context, state *models.SessionState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.raw = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (*models.SessionState, bool, error) {
	s.mu.Lock()
	raw := s.raw
	s.mu.Unlock()

	if raw == nil {
		return nil, false, nil
	}
	var state models.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, false, nil
	}
	return &state, true, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.raw = nil
	s.mu.Unlock()
	return nil
}
