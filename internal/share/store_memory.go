package share

import (
	"context"
	"sort"
	"sync"
	"time"

	"gympass/internal/sentinel"
)

// MemoryStore is an in-memory share store for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	shares map[string]Share
}

// NewMemoryStore creates an empty in-memory share store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{shares: make(map[string]Share)}
}

// Put stores a share link.
func (s *MemoryStore) Put(_ context.Context, share Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shares[share.ShareID]; exists {
		return sentinel.ErrConflict
	}
	s.shares[share.ShareID] = share
	return nil
}

// Get returns a share link by id.
func (s *MemoryStore) Get(_ context.Context, shareID string) (*Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	share, exists := s.shares[shareID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return &share, nil
}

// Delete removes a share link.
func (s *MemoryStore) Delete(_ context.Context, shareID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shares[shareID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.shares, shareID)
	return nil
}

// ListByCredential returns all shares for a credential, newest first.
func (s *MemoryStore) ListByCredential(_ context.Context, credentialID string) ([]Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var shares []Share
	for _, share := range s.shares {
		if share.CredentialID == credentialID {
			shares = append(shares, share)
		}
	}
	sort.Slice(shares, func(i, j int) bool {
		return shares[i].CreatedAt.After(shares[j].CreatedAt)
	})
	return shares, nil
}

// DeleteExpired removes all shares past their TTL.
func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, share := range s.shares {
		if share.Expired(now) {
			delete(s.shares, id)
			removed++
		}
	}
	return removed, nil
}

// Stats counts active, expired, and soon-expiring shares.
func (s *MemoryStore) Stats(_ context.Context, now time.Time) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{}
	horizon := now.Add(24 * time.Hour)
	for _, share := range s.shares {
		if share.Expired(now) {
			stats.ExpiredCount++
			continue
		}
		stats.ActiveCount++
		if !share.ExpiresAt.After(horizon) {
			stats.ExpiringWithin24h++
		}
	}
	return stats, nil
}
