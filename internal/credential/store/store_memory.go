package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gympass/internal/credential/models"
	"gympass/internal/sentinel"
)

// MemoryStore is a thread-safe in-memory credential store.
// The single mutex serializes per-record mutations, so a revoke can never
// interleave with a concurrent status change on the same id.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.Record
}

// NewMemoryStore constructs an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.Record)}
}

func (s *MemoryStore) Put(_ context.Context, record models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return sentinel.ErrConflict
	}
	s.records[record.ID] = record
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[id]; ok {
		return &record, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, filter models.ListFilter, page, pageSize int) (*models.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	s.mu.RLock()
	matched := make([]models.Record, 0, len(s.records))
	for _, record := range s.records {
		if matches(record, filter) {
			matched = append(matched, record)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &models.Page{
		Records:  matched[start:end],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *MemoryStore) SetStatus(_ context.Context, id string, status models.Status, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	// Revocation is terminal: no transition leaves the revoked state, and
	// re-entering it reports the conflict instead of silently succeeding.
	// Writing the current non-revoked status again is a harmless no-op.
	if record.Status == models.StatusRevoked {
		return sentinel.ErrInvalidState
	}
	if record.Status == status {
		return nil
	}

	record.Status = status
	if status == models.StatusRevoked {
		record.RevocationReason = reason
	}
	record.UpdatedAt = time.Now().UTC()
	s.records[id] = record
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func matches(record models.Record, filter models.ListFilter) bool {
	if filter.HolderDID != "" && record.HolderDID != filter.HolderDID {
		return false
	}
	if filter.Status != nil && record.Status != *filter.Status {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		haystacks := []string{
			record.ID,
			record.HolderDID,
			record.BenefitID,
			record.Signed.Credential.CredentialSubject.BenefitName,
		}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
