package store

import (
	"sync"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
)

// MarkerStore holds the current-session marker. An empty store means
// nobody is signed in.
type MarkerStore interface {
	Get() (models.CurrentUser, bool)
	Set(u models.CurrentUser)
	Clear()
}

// MemoryMarkerStore lives as long as the process and is never persisted.
type MemoryMarkerStore struct {
	mu  sync.RWMutex
	cur *models.CurrentUser
}

func NewMemoryMarkerStore() *MemoryMarkerStore {
	return &MemoryMarkerStore{}
}

func (m *MemoryMarkerStore) Get() (models.CurrentUser, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return models.CurrentUser{}, false
	}
	return *m.cur, true
}

func (m *MemoryMarkerStore) Set(u models.CurrentUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur = &u
}

func (m *MemoryMarkerStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur = nil
}
