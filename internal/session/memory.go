package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) key(sessionID, name string) string {
	return sessionID + ":" + name
}

func (s *MemoryStore) Get(_ context.Context, sessionID, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.values[s.key(sessionID, name)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[s.key(sessionID, name)] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, s.key(sessionID, name))
	return nil
}
