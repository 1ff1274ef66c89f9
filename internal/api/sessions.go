package api

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spherical/text-extractor/internal/extract"
)

// SessionStore keeps one extraction hub per session.
type SessionStore struct {
	mu   sync.RWMutex
	hubs map[uuid.UUID]*extract.Hub
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{hubs: make(map[uuid.UUID]*extract.Hub)}
}

// Create stores hub under a new session id.
func (s *SessionStore) Create(hub *extract.Hub) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.hubs[id] = hub
	s.mu.Unlock()
	return id
}

// Get returns the hub for id.
func (s *SessionStore) Get(id uuid.UUID) (*extract.Hub, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hub, ok := s.hubs[id]
	return hub, ok
}

// Delete removes id and reports whether it existed.
func (s *SessionStore) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	hub, ok := s.hubs[id]
	if ok {
		// Reset so that in-flight work against this hub is discarded.
		hub.Reset()
		delete(s.hubs, id)
	}
	return ok
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hubs)
}
