// Package builder constructs unsigned credential documents from a holder and
// a benefit definition, inferring the credential's type tags from the
// benefit's linked services.
package builder

import (
	"time"

	"gympass/internal/credential/models"
	"gympass/internal/directory"
	dErrors "gympass/pkg/domain-errors"
)

// Builder produces unsigned credentials for an issuer DID.
type Builder struct {
	now func() time.Time
}

// Option configures the builder.
type Option func(*Builder)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// New creates a credential builder.
func New(opts ...Option) *Builder {
	b := &Builder{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build creates an unsigned credential binding holderDID to the benefit.
// The validity window runs from now until the benefit's end date.
func (b *Builder) Build(issuerDID, holderDID string, benefit *directory.Benefit, membershipID string) (*models.Credential, error) {
	if holderDID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "holder DID is required")
	}
	if benefit == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "benefit not found")
	}

	types := []string{models.TypeVerifiableCredential, models.TypeGymMembership}
	types = append(types, inferTypeTags(benefit.ServiceNames)...)

	return &models.Credential{
		ID:         models.NewCredentialID(),
		Type:       types,
		Issuer:     issuerDID,
		ValidFrom:  b.now().UTC(),
		ValidUntil: benefit.EndDate.UTC(),
		CredentialSubject: models.Subject{
			ID:              holderDID,
			BenefitID:       benefit.ID,
			MembershipID:    membershipID,
			BenefitName:     benefit.Name,
			Description:     benefit.Description,
			ServiceNames:    benefit.ServiceNames,
			MaxUsesPerMonth: benefit.MaxUsesPerMonth,
			RequiresBooking: benefit.RequiresBooking,
		},
	}, nil
}
