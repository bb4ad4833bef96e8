package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Sessions owns one cart per active session id. Only the registry map is
// shared between requests; each cart stays single-owner, so the mutex guards
// lookup and eviction, not cart mutation.
type Sessions struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewSessions returns an empty registry.
func NewSessions() *Sessions {
	return &Sessions{carts: map[string]*Cart{}}
}

// Get returns the cart owned by sessionID, creating it on first use.
// An empty sessionID gets a fresh id assigned; the effective id is returned
// so callers can hand it back to the client.
func (s *Sessions) Get(sessionID string) (*Cart, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	c, ok := s.carts[sessionID]
	if !ok {
		c = New()
		s.carts[sessionID] = c
	}
	return c, sessionID
}

// Drop evicts the session's cart, if any.
func (s *Sessions) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}
