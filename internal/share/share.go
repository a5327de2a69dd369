// Package share mints public, time-limited links exposing a credential
// snapshot. Links carry no authentication; resolution re-verifies the
// underlying credential rather than trusting the snapshot.
package share

import (
	"context"
	"time"
)

// Share is a stored share link. JWTSnapshot is the credential's compact
// token as of creation time.
type Share struct {
	ShareID      string    `json:"share_id"`
	CredentialID string    `json:"credential_id"`
	JWTSnapshot  string    `json:"jwt_snapshot"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the share is past its TTL at the given instant.
func (s Share) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// Stats summarizes the share population at a point in time.
type Stats struct {
	ActiveCount       int `json:"active_count"`
	ExpiredCount      int `json:"expired_count"`
	ExpiringWithin24h int `json:"expiring_within_24h"`
}

// Store persists share links.
//
// Implementations return sentinel.ErrNotFound for unknown shares and
// sentinel.ErrConflict when a share id is reused.
type Store interface {
	Put(ctx context.Context, share Share) error
	Get(ctx context.Context, shareID string) (*Share, error)
	Delete(ctx context.Context, shareID string) error
	ListByCredential(ctx context.Context, credentialID string) ([]Share, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Stats(ctx context.Context, now time.Time) (*Stats, error)
}
