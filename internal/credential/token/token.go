// Package token signs credentials into compact JWTs and verifies them.
//
// Verification is ordered and short-circuits: signature, then issuer, then
// expiry, then revocation. Expected failures are verdicts, not errors; an
// error is returned only for unparsable input or a failing revocation store,
// so callers can always tell "invalid credential" from "could not determine
// validity".
package token

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gympass/internal/credential/models"
	"gympass/internal/issuer"
	dErrors "gympass/pkg/domain-errors"
)

const proofType = "Ed25519Signature2020"

// Claims is the signed token payload. The vc claim carries the credential
// document itself; jti mirrors the credential id for revocation lookups.
type Claims struct {
	VC models.Credential `json:"vc"`
	jwt.RegisteredClaims
}

// Signer produces compact EdDSA-signed credential tokens.
type Signer struct {
	identity *issuer.Identity
	now      func() time.Time
}

// SignerOption configures the signer.
type SignerOption func(*Signer)

// WithSignerClock overrides the wall clock, for tests.
func WithSignerClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

// NewSigner creates a signer bound to the issuer identity.
func NewSigner(identity *issuer.Identity, opts ...SignerOption) *Signer {
	s := &Signer{identity: identity, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign serializes the credential into a header.payload.signature token.
func (s *Signer) Sign(cred *models.Credential) (*models.SignedCredential, error) {
	if cred == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "credential is required")
	}

	now := s.now().UTC()
	claims := Claims{
		VC: *cred,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.CredentialSubject.ID,
			Issuer:    cred.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(cred.ValidUntil),
			ID:        cred.ID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.identity.SigningKey())
	if err != nil {
		return nil, fmt.Errorf("sign credential: %w", err)
	}

	return &models.SignedCredential{
		Credential: *cred,
		Token:      signed,
		Proof: models.Proof{
			Type:               proofType,
			Created:            now,
			VerificationMethod: s.identity.VerificationMethodID(),
			ProofPurpose:       "assertionMethod",
		},
	}, nil
}

// Verdict is the outcome class of a verification.
type Verdict string

const (
	VerdictValid        Verdict = "valid"
	VerdictBadSignature Verdict = "bad_signature"
	VerdictWrongIssuer  Verdict = "wrong_issuer"
	VerdictExpired      Verdict = "expired"
	VerdictRevoked      Verdict = "revoked"
)

// Result carries the verdict, a display message, and the decoded credential
// when the token parsed far enough to yield one.
type Result struct {
	Verdict    Verdict
	Message    string
	Credential *models.Credential
}

// Valid reports whether the credential passed every check.
func (r *Result) Valid() bool {
	return r.Verdict == VerdictValid
}

// RevocationChecker reports whether a stored credential has been revoked.
// Unknown ids are not revoked; lookups that cannot complete return an error.
type RevocationChecker interface {
	Revoked(ctx context.Context, credentialID string) (bool, error)
}

// Verifier validates credential tokens against the issuer's public key and
// the revocation state in the credential store.
type Verifier struct {
	issuerDID   string
	publicKey   ed25519.PublicKey
	revocations RevocationChecker
	now         func() time.Time
}

// VerifierOption configures the verifier.
type VerifierOption func(*Verifier)

// WithVerifierClock overrides the wall clock, for tests.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier creates a verifier for the given issuer.
// revocations may be nil, in which case the revocation check is skipped.
func NewVerifier(issuerDID string, publicKey ed25519.PublicKey, revocations RevocationChecker, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		issuerDID:   issuerDID,
		publicKey:   publicKey,
		revocations: revocations,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify runs the ordered verification pipeline on a compact token.
//
// The returned error is non-nil only when the token is unparsable or the
// revocation lookup failed; every expected outcome is a Result.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Result, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.publicKey, nil
	}, jwt.WithoutClaimsValidation())

	switch {
	case err == nil && parsed.Valid:
		// signature checks out, continue below
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &Result{
			Verdict: VerdictBadSignature,
			Message: "Credential signature is invalid",
		}, nil
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "could not parse credential token")
	}

	if claims.Issuer != v.issuerDID {
		return &Result{
			Verdict:    VerdictWrongIssuer,
			Message:    "Credential was issued by an unknown issuer",
			Credential: &claims.VC,
		}, nil
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(v.now()) {
		return &Result{
			Verdict:    VerdictExpired,
			Message:    "Credential has expired",
			Credential: &claims.VC,
		}, nil
	}

	if v.revocations != nil {
		revoked, err := v.revocations.Revoked(ctx, claims.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not check revocation status")
		}
		if revoked {
			return &Result{
				Verdict:    VerdictRevoked,
				Message:    "Credential has been revoked",
				Credential: &claims.VC,
			}, nil
		}
	}

	return &Result{
		Verdict:    VerdictValid,
		Message:    "Credential is valid",
		Credential: &claims.VC,
	}, nil
}
