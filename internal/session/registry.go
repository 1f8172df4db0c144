package session

import (
	"sort"
	"sync"

	"livecap/internal/services"
)

// Registry tracks live sessions by id. Sessions share no mutable state
// with each other beyond this map.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session under its id.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "registry", "get", "No session with id "+id, nil)
	}
	return s, nil
}

// Remove forgets a session. The caller is responsible for cleanup.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// List returns all registered sessions, newest first.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].createdAt.After(out[j].createdAt)
	})
	return out
}

// StopAll stops every registered session. Used on daemon shutdown.
func (r *Registry) StopAll() {
	for _, s := range r.List() {
		s.Stop()
	}
}
