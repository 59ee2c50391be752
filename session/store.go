package session

import "sync"

// MemoryStore is the in-process Store. A real deployment substitutes a
// TTL-owning external store; this one backs tests and the CLI.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Context
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Context)}
}

// Get implements Store.
func (s *MemoryStore) Get(userID string) (*Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sctx, ok := s.sessions[userID]
	return sctx, ok
}

// Put implements Store.
func (s *MemoryStore) Put(userID string, sctx *Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sctx
}

// Len reports the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
