// Package directory defines the external collaborator ports the credential
// engine reads from: the benefit/service catalogue and the member directory.
// Production deployments adapt the membership CRUD backend onto these
// interfaces; the in-memory implementations serve tests and standalone runs.
package directory

import (
	"context"
	"time"
)

// Benefit is a membership benefit as resolved from the catalogue.
type Benefit struct {
	ID              string
	Name            string
	Description     string
	ServiceNames    []string
	MaxUsesPerMonth *int
	RequiresBooking bool
	StartDate       time.Time
	EndDate         time.Time
}

// Holder is a member as resolved from the user directory.
type Holder struct {
	UserID string
	DID    string
	Name   string
}

// BenefitDirectory resolves benefit ids to benefit records.
type BenefitDirectory interface {
	Benefit(ctx context.Context, id string) (*Benefit, error)
}

// UserDirectory resolves user ids to credential holders.
type UserDirectory interface {
	Holder(ctx context.Context, userID string) (*Holder, error)
}
