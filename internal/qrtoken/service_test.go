package qrtoken

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gympass/internal/credential/models"
	"gympass/internal/credential/store"
	dErrors "gympass/pkg/domain-errors"
)

type TokenServiceSuite struct {
	suite.Suite

	credentials *store.MemoryStore
	service     *Service
	now         time.Time
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceSuite))
}

func (s *TokenServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.credentials = store.NewMemoryStore()

	s.Require().NoError(s.credentials.Put(context.Background(), models.Record{
		ID:        "cred-1",
		HolderDID: "did:key:zHolder",
		BenefitID: "benefit-1",
		Status:    models.StatusActive,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}))

	s.service = New(NewMemoryStore(), s.credentials,
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *TokenServiceSuite) TestMint() {
	s.Run("mints a client token with the default TTL", func() {
		token, err := s.service.Mint(context.Background(), "cred-1")
		s.Require().NoError(err)
		s.Len(token.Token, 2*tokenBytes)
		s.Equal("cred-1", token.CredentialID)
		s.Equal(s.now.Add(DefaultClientTTL), token.ExpiresAt)
		s.False(token.Permanent)
	})

	s.Run("mints a permanent token", func() {
		token, err := s.service.MintPermanent(context.Background(), "cred-1")
		s.Require().NoError(err)
		s.True(token.Permanent)
		s.True(token.ExpiresAt.After(s.now.AddDate(50, 0, 0)))
	})

	s.Run("rejects an unknown credential", func() {
		_, err := s.service.Mint(context.Background(), "cred-missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects a missing credential id", func() {
		_, err := s.service.Mint(context.Background(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *TokenServiceSuite) TestResolveSingleUse() {
	token, err := s.service.Mint(context.Background(), "cred-1")
	s.Require().NoError(err)

	record, err := s.service.Resolve(context.Background(), token.Token)
	s.Require().NoError(err)
	s.Equal("cred-1", record.ID)

	_, err = s.service.Resolve(context.Background(), token.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeTokenUsed))
}

func (s *TokenServiceSuite) TestResolvePermanent() {
	token, err := s.service.MintPermanent(context.Background(), "cred-1")
	s.Require().NoError(err)

	for range 5 {
		record, err := s.service.Resolve(context.Background(), token.Token)
		s.Require().NoError(err)
		s.Equal("cred-1", record.ID)
	}
}

func (s *TokenServiceSuite) TestResolveExpired() {
	token, err := s.service.Mint(context.Background(), "cred-1")
	s.Require().NoError(err)

	s.now = s.now.Add(DefaultClientTTL + time.Second)

	_, err = s.service.Resolve(context.Background(), token.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeTokenExpired))

	// The expired token is evicted lazily, so a retry no longer finds it.
	_, err = s.service.Resolve(context.Background(), token.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *TokenServiceSuite) TestResolveUnknown() {
	_, err := s.service.Resolve(context.Background(), "no-such-token")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *TokenServiceSuite) TestConcurrentResolve() {
	token, err := s.service.Mint(context.Background(), "cred-1")
	s.Require().NoError(err)

	const workers = 16
	successes := make(chan string, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if record, err := s.service.Resolve(context.Background(), token.Token); err == nil {
				successes <- record.ID
			}
		}()
	}
	wg.Wait()
	close(successes)

	var resolved []string
	for id := range successes {
		resolved = append(resolved, id)
	}
	s.Require().Len(resolved, 1)
	s.Equal("cred-1", resolved[0])
}

func (s *TokenServiceSuite) TestRevoke() {
	token, err := s.service.Mint(context.Background(), "cred-1")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Revoke(context.Background(), token.Token))

	_, err = s.service.Resolve(context.Background(), token.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.Revoke(context.Background(), token.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *TokenServiceSuite) TestCleanup() {
	expired1, err := s.service.Mint(context.Background(), "cred-1")
	s.Require().NoError(err)
	expired2, err := s.service.Mint(context.Background(), "cred-1")
	s.Require().NoError(err)
	permanent, err := s.service.MintPermanent(context.Background(), "cred-1")
	s.Require().NoError(err)

	s.now = s.now.Add(DefaultClientTTL + time.Minute)
	fresh, err := s.service.Mint(context.Background(), "cred-1")
	s.Require().NoError(err)

	removed, err := s.service.Cleanup(context.Background())
	s.Require().NoError(err)
	s.Equal(2, removed)

	for _, gone := range []string{expired1.Token, expired2.Token} {
		_, err := s.service.Resolve(context.Background(), gone)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	}
	_, err = s.service.Resolve(context.Background(), permanent.Token)
	s.NoError(err)
	_, err = s.service.Resolve(context.Background(), fresh.Token)
	s.NoError(err)
}
