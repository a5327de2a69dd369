//go:build integration

package qrtoken

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gympass/internal/sentinel"
	"gympass/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite

	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, &RedisStoreSuite{redis: containers.GetManager().GetRedis(t)})
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.store = NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	token := Token{
		Token:        "tok-round-trip",
		CredentialID: "cred-1",
		ExpiresAt:    time.Now().Add(time.Minute).UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.store.Put(ctx, token))

	stored, err := s.store.Get(ctx, token.Token)
	s.Require().NoError(err)
	s.Equal(token.CredentialID, stored.CredentialID)
	s.False(stored.Used)

	s.ErrorIs(s.store.Put(ctx, token), sentinel.ErrConflict)

	_, err = s.store.Get(ctx, "tok-missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestConsumeOnce() {
	ctx := context.Background()
	token := Token{
		Token:        "tok-single-use",
		CredentialID: "cred-1",
		ExpiresAt:    time.Now().Add(time.Minute).UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.store.Put(ctx, token))

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.store.Consume(ctx, token.Token)
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			s.ErrorIs(err, sentinel.ErrAlreadyUsed)
		}
	}
	s.Equal(1, successes)

	stored, err := s.store.Get(ctx, token.Token)
	s.Require().NoError(err)
	s.True(stored.Used)
}

func (s *RedisStoreSuite) TestConsumeUnknown() {
	s.ErrorIs(s.store.Consume(context.Background(), "tok-missing"), sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestNativeExpiry() {
	ctx := context.Background()
	token := Token{
		Token:        "tok-expiring",
		CredentialID: "cred-1",
		// Already past expiry: the retention window keeps it readable so
		// resolve can still classify it as expired.
		ExpiresAt: time.Now().Add(-time.Second).UTC(),
		CreatedAt: time.Now().Add(-time.Minute).UTC(),
	}
	s.Require().NoError(s.store.Put(ctx, token))

	stored, err := s.store.Get(ctx, token.Token)
	s.Require().NoError(err)
	s.True(stored.ExpiresAt.Before(time.Now()))

	ttl, err := s.redis.Client.TTL(ctx, tokenKeyPrefix+token.Token).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, expiredRetention)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	token := Token{
		Token:        "tok-delete",
		CredentialID: "cred-1",
		ExpiresAt:    time.Now().Add(time.Minute).UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.store.Put(ctx, token))

	s.Require().NoError(s.store.Delete(ctx, token.Token))
	_, err := s.store.Get(ctx, token.Token)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, token.Token), sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestPermanentHasNoTTL() {
	ctx := context.Background()
	token := Token{
		Token:        "tok-permanent",
		CredentialID: "cred-1",
		ExpiresAt:    time.Now().Add(permanentHorizon).UTC(),
		Permanent:    true,
		CreatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.store.Put(ctx, token))

	ttl, err := s.redis.Client.TTL(ctx, tokenKeyPrefix+token.Token).Result()
	s.Require().NoError(err)
	s.Equal(time.Duration(-1), ttl)
}
