//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gympass/internal/credential/models"
	"gympass/internal/credential/store"
	"gympass/internal/sentinel"
	"gympass/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "credentials"))
}

func (s *PostgresStoreSuite) record(id string) models.Record {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return models.Record{
		ID:        id,
		HolderDID: "did:key:zAlice",
		BenefitID: "b1",
		Status:    models.StatusActive,
		Signed: models.SignedCredential{
			Credential: models.Credential{
				ID:         id,
				Type:       []string{models.TypeVerifiableCredential, models.TypeGymMembership},
				Issuer:     "did:key:zIssuer",
				ValidFrom:  now,
				ValidUntil: now.AddDate(0, 6, 0),
				CredentialSubject: models.Subject{
					ID:          "did:key:zAlice",
					BenefitID:   "b1",
					BenefitName: "All Access",
				},
			},
			Token: "header.payload.signature",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresStoreSuite) TestPutGetRoundTrip() {
	ctx := context.Background()
	rec := s.record("c1")

	s.Require().NoError(s.store.Put(ctx, rec))

	got, err := s.store.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Equal(rec.HolderDID, got.HolderDID)
	s.Equal(rec.Signed.Token, got.Signed.Token)
	s.Equal("All Access", got.Signed.Credential.CredentialSubject.BenefitName)
	s.Equal(models.StatusActive, got.Status)
}

func (s *PostgresStoreSuite) TestPutDuplicate() {
	ctx := context.Background()
	rec := s.record("c1")

	s.Require().NoError(s.store.Put(ctx, rec))
	s.ErrorIs(s.store.Put(ctx, rec), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestListFiltersAndOrder() {
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3"} {
		rec := s.record(id)
		if id == "c2" {
			rec.HolderDID = "did:key:zBob"
		}
		s.Require().NoError(s.store.Put(ctx, rec))
		time.Sleep(5 * time.Millisecond) // distinct created_at for ordering
	}

	page, err := s.store.List(ctx, models.ListFilter{}, 1, 10)
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Equal("c3", page.Records[0].ID)

	page, err = s.store.List(ctx, models.ListFilter{HolderDID: "did:key:zBob"}, 1, 10)
	s.Require().NoError(err)
	s.Equal(1, page.Total)

	page, err = s.store.List(ctx, models.ListFilter{Search: "all access"}, 1, 10)
	s.Require().NoError(err)
	s.Equal(3, page.Total)
}

func (s *PostgresStoreSuite) TestRevokeExactlyOnce() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, s.record("c1")))

	const n = 8
	var successes int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.store.SetStatus(ctx, "c1", models.StatusRevoked, "cancelled"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes)

	got, err := s.store.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, got.Status)
	s.Equal("cancelled", got.RevocationReason)

	s.ErrorIs(s.store.SetStatus(ctx, "c1", models.StatusRevoked, "again"), sentinel.ErrInvalidState)
}

func (s *PostgresStoreSuite) TestSetStatusSameStatusNoOp() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, s.record("c1")))

	s.NoError(s.store.SetStatus(ctx, "c1", models.StatusActive, ""))

	got, err := s.store.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Equal(models.StatusActive, got.Status)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, s.record("c1")))

	s.NoError(s.store.Delete(ctx, "c1"))
	_, err := s.store.Get(ctx, "c1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, "c1"), sentinel.ErrNotFound)
}
