package token

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gympass/internal/credential/models"
	"gympass/internal/issuer"
	dErrors "gympass/pkg/domain-errors"
)

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) Revoked(_ context.Context, credentialID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[credentialID], nil
}

type TokenSuite struct {
	suite.Suite
	identity    *issuer.Identity
	signer      *Signer
	revocations *fakeRevocations
	now         time.Time
	cred        models.Credential
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) SetupTest() {
	var err error
	s.identity, err = issuer.Generate()
	s.Require().NoError(err)

	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.signer = NewSigner(s.identity, WithSignerClock(func() time.Time { return s.now }))
	s.revocations = &fakeRevocations{revoked: map[string]bool{}}

	s.cred = models.Credential{
		ID:         models.NewCredentialID(),
		Type:       []string{models.TypeVerifiableCredential, models.TypeGymMembership},
		Issuer:     s.identity.DID(),
		ValidFrom:  s.now,
		ValidUntil: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CredentialSubject: models.Subject{
			ID:        "did:key:zHolder",
			BenefitID: "b1",
		},
	}
}

func (s *TokenSuite) verifier(opts ...VerifierOption) *Verifier {
	base := []VerifierOption{WithVerifierClock(func() time.Time { return s.now })}
	return NewVerifier(s.identity.DID(), s.identity.PublicKey(), s.revocations, append(base, opts...)...)
}

func (s *TokenSuite) TestSign() {
	signed, err := s.signer.Sign(&s.cred)
	s.Require().NoError(err)

	s.Run("produces a three-part compact token", func() {
		s.Len(strings.Split(signed.Token, "."), 3)
	})

	s.Run("proof references the issuer key", func() {
		s.Equal(s.identity.DID()+"#key-1", signed.Proof.VerificationMethod)
		s.Equal("Ed25519Signature2020", signed.Proof.Type)
		s.Equal("assertionMethod", signed.Proof.ProofPurpose)
	})

	s.Run("rejects nil credential", func() {
		_, err := s.signer.Sign(nil)
		s.Error(err)
	})
}

func (s *TokenSuite) TestRoundTrip() {
	signed, err := s.signer.Sign(&s.cred)
	s.Require().NoError(err)

	result, err := s.verifier().Verify(context.Background(), signed.Token)
	s.Require().NoError(err)

	s.True(result.Valid())
	s.Equal(VerdictValid, result.Verdict)
	s.Require().NotNil(result.Credential)
	s.Equal(s.cred.ID, result.Credential.ID)
	s.Equal("b1", result.Credential.CredentialSubject.BenefitID)
	s.Equal("did:key:zHolder", result.Credential.CredentialSubject.ID)
}

func (s *TokenSuite) TestTamperDetection() {
	signed, err := s.signer.Sign(&s.cred)
	s.Require().NoError(err)

	parts := strings.Split(signed.Token, ".")
	s.Require().Len(parts, 3)

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	s.Require().NoError(err)
	sig[0] ^= 0xff
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	result, err := s.verifier().Verify(context.Background(), strings.Join(parts, "."))
	s.Require().NoError(err)
	s.Equal(VerdictBadSignature, result.Verdict)
	s.Contains(result.Message, "signature")
}

func (s *TokenSuite) TestWrongIssuer() {
	other, err := issuer.Generate()
	s.Require().NoError(err)

	cred := s.cred
	cred.Issuer = other.DID()
	foreign := NewSigner(other, WithSignerClock(func() time.Time { return s.now }))
	signed, err := foreign.Sign(&cred)
	s.Require().NoError(err)

	// Verify against the foreign key so the signature passes and the issuer
	// check is the one that trips.
	v := NewVerifier(s.identity.DID(), other.PublicKey(), s.revocations,
		WithVerifierClock(func() time.Time { return s.now }))
	result, err := v.Verify(context.Background(), signed.Token)
	s.Require().NoError(err)
	s.Equal(VerdictWrongIssuer, result.Verdict)
	s.Contains(result.Message, "issuer")
}

func (s *TokenSuite) TestExpiryBoundary() {
	s.Run("one second past expiry is expired", func() {
		cred := s.cred
		cred.ValidUntil = s.now.Add(-time.Second)
		signed, err := s.signer.Sign(&cred)
		s.Require().NoError(err)

		result, err := s.verifier().Verify(context.Background(), signed.Token)
		s.Require().NoError(err)
		s.Equal(VerdictExpired, result.Verdict)
		s.Contains(result.Message, "expired")
	})

	s.Run("one second before expiry is not expired", func() {
		cred := s.cred
		cred.ValidUntil = s.now.Add(time.Second)
		signed, err := s.signer.Sign(&cred)
		s.Require().NoError(err)

		result, err := s.verifier().Verify(context.Background(), signed.Token)
		s.Require().NoError(err)
		s.Equal(VerdictValid, result.Verdict)
	})
}

func (s *TokenSuite) TestRevocation() {
	signed, err := s.signer.Sign(&s.cred)
	s.Require().NoError(err)

	s.Run("revoked credential fails despite valid signature and expiry", func() {
		s.revocations.revoked[s.cred.ID] = true

		result, err := s.verifier().Verify(context.Background(), signed.Token)
		s.Require().NoError(err)
		s.Equal(VerdictRevoked, result.Verdict)
		s.Contains(result.Message, "revoked")
	})

	s.Run("revocation store failure is an error, not a verdict", func() {
		s.revocations.err = errors.New("connection refused")

		result, err := s.verifier().Verify(context.Background(), signed.Token)
		s.Nil(result)
		s.True(dErrors.HasCode(err, dErrors.CodeStorageFailure))
	})

	s.Run("nil checker skips the revocation lookup", func() {
		v := NewVerifier(s.identity.DID(), s.identity.PublicKey(), nil,
			WithVerifierClock(func() time.Time { return s.now }))
		result, err := v.Verify(context.Background(), signed.Token)
		s.Require().NoError(err)
		s.Equal(VerdictValid, result.Verdict)
	})
}

func (s *TokenSuite) TestMalformedToken() {
	result, err := s.verifier().Verify(context.Background(), "not-a-jwt")
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
