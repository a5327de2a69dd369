// Package audit captures credential lifecycle actions as transport-agnostic
// events so sinks (Kafka, logs) can fan out without coupling to services.
package audit

import (
	"context"
	"time"
)

// Action identifies what happened to a credential or one of its handles.
type Action string

const (
	ActionCredentialIssued  Action = "credential_issued"
	ActionCredentialRevoked Action = "credential_revoked"
	ActionCredentialDeleted Action = "credential_deleted"
	ActionTokenMinted       Action = "qr_token_minted"
	ActionTokenRevoked      Action = "qr_token_revoked"
	ActionShareCreated      Action = "share_created"
	ActionShareRevoked      Action = "share_revoked"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       Action    `json:"action"`
	CredentialID string    `json:"credential_id,omitempty"`
	HolderDID    string    `json:"holder_did,omitempty"`
	BenefitID    string    `json:"benefit_id,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
}

// Publisher emits audit events. Implementations must be safe for concurrent use.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Noop discards all events. Used when no audit sink is configured.
type Noop struct{}

// Emit implements Publisher.
func (Noop) Emit(context.Context, Event) error { return nil }
