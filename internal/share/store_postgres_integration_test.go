//go:build integration

package share

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gympass/internal/sentinel"
	"gympass/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite

	postgres *containers.PostgresContainer
	store    *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, &PostgresStoreSuite{postgres: containers.GetManager().GetPostgres(t)})
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "share_links"))
	s.store = NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) newShare(id, credentialID string, ttl time.Duration, createdAt time.Time) Share {
	return Share{
		ShareID:      id,
		CredentialID: credentialID,
		JWTSnapshot:  "header.payload.signature",
		ExpiresAt:    createdAt.Add(ttl),
		CreatedAt:    createdAt,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	share := s.newShare("share-1", "cred-1", time.Hour, now)

	s.Require().NoError(s.store.Put(ctx, share))

	stored, err := s.store.Get(ctx, "share-1")
	s.Require().NoError(err)
	s.Equal(share.CredentialID, stored.CredentialID)
	s.Equal(share.JWTSnapshot, stored.JWTSnapshot)
	s.WithinDuration(share.ExpiresAt, stored.ExpiresAt, time.Millisecond)

	s.ErrorIs(s.store.Put(ctx, share), sentinel.ErrConflict)

	_, err = s.store.Get(ctx, "share-missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByCredential() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	s.Require().NoError(s.store.Put(ctx, s.newShare("share-old", "cred-1", time.Hour, now.Add(-time.Minute))))
	s.Require().NoError(s.store.Put(ctx, s.newShare("share-new", "cred-1", time.Hour, now)))
	s.Require().NoError(s.store.Put(ctx, s.newShare("share-other", "cred-2", time.Hour, now)))

	shares, err := s.store.ListByCredential(ctx, "cred-1")
	s.Require().NoError(err)
	s.Require().Len(shares, 2)
	s.Equal("share-new", shares[0].ShareID)
	s.Equal("share-old", shares[1].ShareID)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	now := time.Now().UTC()

	s.Require().NoError(s.store.Put(ctx, s.newShare("share-1", "cred-1", time.Hour, now)))
	s.Require().NoError(s.store.Delete(ctx, "share-1"))

	_, err := s.store.Get(ctx, "share-1")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, "share-1"), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeleteExpiredAndStats() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	s.Require().NoError(s.store.Put(ctx, s.newShare("share-expired", "cred-1", -time.Hour, now.Add(-2*time.Hour))))
	s.Require().NoError(s.store.Put(ctx, s.newShare("share-soon", "cred-1", 12*time.Hour, now)))
	s.Require().NoError(s.store.Put(ctx, s.newShare("share-later", "cred-1", 96*time.Hour, now)))

	stats, err := s.store.Stats(ctx, now)
	s.Require().NoError(err)
	s.Equal(2, stats.ActiveCount)
	s.Equal(1, stats.ExpiredCount)
	s.Equal(1, stats.ExpiringWithin24h)

	removed, err := s.store.DeleteExpired(ctx, now)
	s.Require().NoError(err)
	s.Equal(1, removed)

	stats, err = s.store.Stats(ctx, now)
	s.Require().NoError(err)
	s.Equal(2, stats.ActiveCount)
	s.Equal(0, stats.ExpiredCount)
}
