package dialog

import "sync"

// Store keeps the active dialog per user identity. Implementations are
// injected into the bot so tests never share process-wide state. There
// is no expiry: an abandoned dialog stays until the same user starts
// another one or the process restarts.
type Store interface {
	Get(userID string) (State, bool)
	Set(userID string, st State)
	Delete(userID string)
}

// MemoryStore is the in-process implementation for single-instance
// deployments.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (m *MemoryStore) Get(userID string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID]
	return st, ok
}

func (m *MemoryStore) Set(userID string, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = st
}

func (m *MemoryStore) Delete(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}
