// Package session maps opaque connection tokens to engine sessions.
package session

import (
	"sync"

	"github.com/aarondkim/flights/internal/service/trips"
	"github.com/google/uuid"
)

type Registry struct {
	svc *trips.Service

	mu       sync.RWMutex
	sessions map[string]*trips.Session
}

func NewRegistry(svc *trips.Service) *Registry {
	return &Registry{
		svc:      svc,
		sessions: make(map[string]*trips.Session),
	}
}

// Create opens a fresh session and returns its token.
func (r *Registry) Create() (string, *trips.Session) {
	token := uuid.NewString()
	sess := r.svc.NewSession()

	r.mu.Lock()
	r.sessions[token] = sess
	r.mu.Unlock()
	return token, sess
}

func (r *Registry) Get(token string) (*trips.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[token]
	return sess, ok
}

func (r *Registry) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}
