package audit

import "context"

// Store is an append-only sink for audit events, queryable per credential.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCredential(ctx context.Context, credentialID string) ([]Event, error)
}
