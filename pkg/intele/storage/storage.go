package storage

import "sync"

// StateStorage keeps whether a user is currently being asked for input.
// Implementations must be safe for concurrent use.
type StateStorage interface {
	Set(userID int64, state string) error
	Get(userID int64) (string, error)
	Delete(userID int64)
}

// MemoryStorage is a StateStorage for a single process.
type MemoryStorage struct {
	mu    sync.RWMutex
	store map[int64]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		store: make(map[int64]string),
	}
}

func (m *MemoryStorage) Set(userID int64, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[userID] = state
	return nil
}

// Get returns "" for unknown users.
func (m *MemoryStorage) Get(userID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store[userID], nil
}

func (m *MemoryStorage) Delete(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, userID)
}
