package session

import "sync"

// MemoryStore keeps at most one Session in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	current   *Session
	listeners []func()
}

// NewMemoryStore returns an empty (logged out) store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the current session, if any.
func (m *MemoryStore) Get() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Set replaces the current session. No validation is performed.
func (m *MemoryStore) Set(s Session) {
	m.mu.Lock()
	m.current = &s
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()
	notify(listeners)
}

// Clear removes the current session.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	m.current = nil
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()
	notify(listeners)
}

// Subscribe registers fn to run after every Set or Clear.
func (m *MemoryStore) Subscribe(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
