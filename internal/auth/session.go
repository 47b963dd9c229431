package auth

import (
	"context"
	"sync"
)

// SessionStore persists the single refresh-token slot each account carries.
// There is no session table and no per-device multiplicity: the last issued
// refresh token is the only valid one, so logging in from a second device
// implicitly invalidates the first.
type SessionStore interface {
	// Persist overwrites the account's stored refresh token (last write wins).
	Persist(ctx context.Context, accountID, token string) error
	// Replace swaps the stored token for a new one only if the current value
	// equals old; it returns ErrSessionRevoked otherwise. The compare and the
	// write are a single atomic step so concurrent refreshes cannot both win.
	Replace(ctx context.Context, accountID, old, new string) error
	// Clear unsets the stored token.
	Clear(ctx context.Context, accountID string) error
	// Matches reports whether the presented token equals the stored one.
	Matches(ctx context.Context, accountID, token string) (bool, error)
}

// NewInMemorySessionStore returns a SessionStore backed by an in-memory map.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{tokens: make(map[string]string)}
}

// InMemorySessionStore implements SessionStore for tests and local development.
type InMemorySessionStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// Persist overwrites the account's refresh-token slot.
func (s *InMemorySessionStore) Persist(_ context.Context, accountID, token string) error {
	s.mu.Lock()
	s.tokens[accountID] = token
	s.mu.Unlock()
	return nil
}

// Replace swaps the slot only when it still holds old.
func (s *InMemorySessionStore) Replace(_ context.Context, accountID, old, new string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tokens[accountID]
	if !ok || current != old {
		return ErrSessionRevoked
	}
	s.tokens[accountID] = new
	return nil
}

// Clear unsets the account's refresh-token slot.
func (s *InMemorySessionStore) Clear(_ context.Context, accountID string) error {
	s.mu.Lock()
	delete(s.tokens, accountID)
	s.mu.Unlock()
	return nil
}

// Matches reports whether the presented token is the stored one.
func (s *InMemorySessionStore) Matches(_ context.Context, accountID, token string) (bool, error) {
	s.mu.Lock()
	current, ok := s.tokens[accountID]
	s.mu.Unlock()
	return ok && token != "" && current == token, nil
}
