// Package models holds the credential engine's data shapes: the unsigned
// credential document, its signed form, and the stored lifecycle record.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "gympass/pkg/domain-errors"
)

// TypeVerifiableCredential is the base tag every credential carries.
const TypeVerifiableCredential = "VerifiableCredential"

// TypeGymMembership is the program base tag for this platform.
const TypeGymMembership = "GymMembershipCredential"

// NewCredentialID generates a new credential id. The id doubles as the signed
// token's jti claim, which is what revocation lookups key on.
func NewCredentialID() string {
	return uuid.NewString()
}

// Subject is the credentialSubject block binding a holder to a benefit.
type Subject struct {
	ID              string   `json:"id"`
	BenefitID       string   `json:"benefitId"`
	MembershipID    string   `json:"membershipId,omitempty"`
	BenefitName     string   `json:"benefitName"`
	Description     string   `json:"description,omitempty"`
	ServiceNames    []string `json:"serviceNames,omitempty"`
	MaxUsesPerMonth *int     `json:"maxUsesPerMonth,omitempty"`
	RequiresBooking bool     `json:"requiresBooking,omitempty"`
}

// Credential is the unsigned logical credential document.
// ValidUntil always equals the bound benefit's end date.
type Credential struct {
	ID                string    `json:"id"`
	Type              []string  `json:"type"`
	Issuer            string    `json:"issuer"`
	ValidFrom         time.Time `json:"validFrom"`
	ValidUntil        time.Time `json:"validUntil"`
	CredentialSubject Subject   `json:"credentialSubject"`
}

// Proof is the metadata attached alongside the compact token.
type Proof struct {
	Type               string    `json:"type"`
	Created            time.Time `json:"created"`
	VerificationMethod string    `json:"verificationMethod"`
	ProofPurpose       string    `json:"proofPurpose"`
}

// SignedCredential pairs a credential with its compact signed encoding.
// The token's vc claim decodes byte-for-byte to Credential.
type SignedCredential struct {
	Credential Credential `json:"credential"`
	Token      string     `json:"token"`
	Proof      Proof      `json:"proof"`
}

// Status is the mutable lifecycle state of a stored credential.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// ParseStatus validates a status string.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusActive:
		return StatusActive, nil
	case StatusRevoked:
		return StatusRevoked, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported credential status")
	}
}

// Record is the persisted form of an issued credential. It is created Active
// at issuance, transitions to Revoked exactly once, and is only removed by an
// explicit administrative delete.
type Record struct {
	ID               string
	Signed           SignedCredential
	HolderDID        string
	BenefitID        string
	MembershipID     string
	Status           Status
	RevocationReason string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Revoked reports whether the record has been revoked.
func (r *Record) Revoked() bool {
	return r.Status == StatusRevoked
}

// ListFilter narrows store listings.
type ListFilter struct {
	Search    string
	HolderDID string
	Status    *Status
}

// Page is one page of records sorted by creation time descending.
type Page struct {
	Records  []Record
	Total    int
	Page     int
	PageSize int
}
