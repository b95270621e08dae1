package security

import "sync"

// ResultStore holds the most recent successful audit for the lifetime of a session.
// The zero value is not usable; construct with NewResultStore.
type ResultStore struct {
	mutex  sync.RWMutex
	result AuditResult
	filled bool
}

// NewResultStore returns an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Store replaces the held result with a copy of the provided one.
func (store *ResultStore) Store(result AuditResult) {
	snapshot := result.clone()
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.result = snapshot
	store.filled = true
}

// Load returns a copy of the held result and whether one has been stored.
func (store *ResultStore) Load() (AuditResult, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	if !store.filled {
		return AuditResult{}, false
	}
	return store.result.clone(), true
}
