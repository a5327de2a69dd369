// Package store persists issued credentials and their lifecycle status.
// It is the single source of truth consulted for revocation during
// verification.
package store

import (
	"context"

	"gympass/internal/credential/models"
)

// Store is the credential persistence contract.
//
// Implementations return sentinel errors: ErrConflict from Put when the id
// already exists (ids are never reused), ErrNotFound from lookups, and
// ErrInvalidState from SetStatus when re-revoking an already revoked record.
// Mutations are atomic per record.
type Store interface {
	Put(ctx context.Context, record models.Record) error
	Get(ctx context.Context, id string) (*models.Record, error)
	List(ctx context.Context, filter models.ListFilter, page, pageSize int) (*models.Page, error)
	SetStatus(ctx context.Context, id string, status models.Status, reason string) error
	Delete(ctx context.Context, id string) error
}

const defaultPageSize = 20

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}
