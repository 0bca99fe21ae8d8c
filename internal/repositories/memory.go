package repositories

import "sync"

// MemorySessionStore keeps values in process memory.
type MemorySessionStore struct {
	mu      sync.RWMutex
	session string
	values  map[string]string
}

// NewMemorySessionStore creates an empty store for sessionID.
func NewMemorySessionStore(sessionID string) *MemorySessionStore {
	return &MemorySessionStore{session: sessionID, values: make(map[string]string)}
}

func (s *MemorySessionStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemorySessionStore) Set(key, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = val
	return nil
}

func (s *MemorySessionStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemorySessionStore) Session() string { return s.session }

func (s *MemorySessionStore) Close() error { return nil }
