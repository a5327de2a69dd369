// Package qrtoken mints short-lived opaque tokens that reference a stored
// credential. A leaked QR code exposes only the token's own window, not the
// credential's validity period.
package qrtoken

import (
	"context"
	"time"
)

// Token is an opaque handle bound to a credential id.
//
// Permanent tokens never expire and may be resolved any number of times.
// Client tokens expire shortly after minting and resolve at most once.
type Token struct {
	Token        string    `json:"token"`
	CredentialID string    `json:"credential_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	Used         bool      `json:"used"`
	Permanent    bool      `json:"permanent"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists ephemeral tokens.
//
// Implementations return sentinel.ErrNotFound for unknown tokens and
// sentinel.ErrAlreadyUsed from Consume when the token was consumed before.
// Consume must be atomic: of N concurrent calls exactly one succeeds.
type Store interface {
	Put(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Consume(ctx context.Context, token string) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
