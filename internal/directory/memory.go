package directory

import (
	"context"
	"sync"

	"gympass/internal/sentinel"
)

// MemoryBenefits is a thread-safe in-memory BenefitDirectory.
type MemoryBenefits struct {
	mu       sync.RWMutex
	benefits map[string]Benefit
}

// NewMemoryBenefits constructs an empty in-memory benefit directory.
func NewMemoryBenefits() *MemoryBenefits {
	return &MemoryBenefits{benefits: make(map[string]Benefit)}
}

// Put registers or replaces a benefit.
func (d *MemoryBenefits) Put(benefit Benefit) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.benefits[benefit.ID] = benefit
}

// Benefit resolves a benefit by id.
func (d *MemoryBenefits) Benefit(_ context.Context, id string) (*Benefit, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if b, ok := d.benefits[id]; ok {
		return &b, nil
	}
	return nil, sentinel.ErrNotFound
}

// MemoryUsers is a thread-safe in-memory UserDirectory.
type MemoryUsers struct {
	mu      sync.RWMutex
	holders map[string]Holder
}

// NewMemoryUsers constructs an empty in-memory user directory.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{holders: make(map[string]Holder)}
}

// Put registers or replaces a holder.
func (d *MemoryUsers) Put(holder Holder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.holders[holder.UserID] = holder
}

// Holder resolves a holder by user id.
func (d *MemoryUsers) Holder(_ context.Context, userID string) (*Holder, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if h, ok := d.holders[userID]; ok {
		return &h, nil
	}
	return nil, sentinel.ErrNotFound
}
