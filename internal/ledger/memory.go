package ledger

import (
	"context"
	"sync"
)

// MemoryStore keeps the snapshot in process. It is the store used when
// durability is not wanted and in tests.
type MemoryStore struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snap: Snapshot{}}
}

func (s *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.clone()
	return nil
}
