// Package keylock provides named mutual exclusion: a mutex scoped to a
// logical key rather than a whole resource, so unrelated keys proceed
// concurrently while calls sharing a key are fully serialized.
package keylock

import "sync"

// entry is a per-key mutex with a reference count. refs counts the holder
// plus all waiters; the entry is evicted from the map when it drops to zero,
// so the key space does not grow without bound.
type entry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes operations that share a key. The zero value is not
// usable; create one with New.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New creates a new Manager.
func New() *Manager {
	return &Manager{
		locks: make(map[string]*entry),
	}
}

// WithLock runs fn while holding the mutex for key. At most one fn runs for
// a given key at a time; distinct keys do not block each other. The call
// blocks without timeout until the key's mutex is available. fn's error is
// returned unchanged, and the mutex is released on every exit path.
func (m *Manager) WithLock(key string, fn func() error) error {
	e := m.acquire(key)
	defer m.release(key, e)

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn()
}

// acquire atomically gets or creates the entry for key and takes a reference
// on it. Two goroutines racing on an unseen key observe the same entry.
func (m *Manager) acquire(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	return e
}

// release drops a reference and evicts the entry once nobody holds or waits
// on it.
func (m *Manager) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}

// Len reports the number of keys currently held or waited on. Intended for
// tests and diagnostics.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
