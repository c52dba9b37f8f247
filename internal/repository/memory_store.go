package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in process memory. Used for tests and the
// "memory" storage backend.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Read(_ context.Context, collection string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[collection]
	if !ok {
		return nil, ErrNoDocument
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStore) Write(_ context.Context, collection string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.mu.Lock()
	s.docs[collection] = buf
	s.mu.Unlock()
	return nil
}

var _ DocumentStore = (*MemoryStore)(nil)
