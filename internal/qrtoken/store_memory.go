package qrtoken

import (
	"context"
	"sync"
	"time"

	"gympass/internal/sentinel"
)

// MemoryStore is an in-memory token store for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Token)}
}

// Put stores a token.
func (s *MemoryStore) Put(_ context.Context, token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token.Token]; exists {
		return sentinel.ErrConflict
	}
	s.tokens[token.Token] = token
	return nil
}

// Get returns a token by its opaque value.
func (s *MemoryStore) Get(_ context.Context, token string) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.tokens[token]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return &stored, nil
}

// Consume marks a token used. Exactly one concurrent caller succeeds.
func (s *MemoryStore) Consume(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.tokens[token]
	if !exists {
		return sentinel.ErrNotFound
	}
	if stored.Used {
		return sentinel.ErrAlreadyUsed
	}
	stored.Used = true
	s.tokens[token] = stored
	return nil
}

// Delete removes a token.
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.tokens, token)
	return nil
}

// DeleteExpired removes all non-permanent tokens past their expiry.
func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, stored := range s.tokens {
		if !stored.Permanent && stored.ExpiresAt.Before(now) {
			delete(s.tokens, key)
			removed++
		}
	}
	return removed, nil
}
