package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type StorePublisherSuite struct {
	suite.Suite
}

func TestStorePublisherSuite(t *testing.T) {
	suite.Run(t, new(StorePublisherSuite))
}

func (s *StorePublisherSuite) TestSyncEmit() {
	store := NewInMemoryStore()
	publisher := NewStorePublisher(store)

	err := publisher.Emit(context.Background(), Event{
		Action:       ActionCredentialIssued,
		CredentialID: "cred-1",
		HolderDID:    "did:key:zHolder",
	})
	s.Require().NoError(err)

	events, err := publisher.List(context.Background(), "cred-1")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(ActionCredentialIssued, events[0].Action)
	s.False(events[0].Timestamp.IsZero())
}

func (s *StorePublisherSuite) TestAsyncEmitDrainsOnClose() {
	store := NewInMemoryStore()
	publisher := NewStorePublisher(store, WithAsyncBuffer(16))

	for range 5 {
		s.Require().NoError(publisher.Emit(context.Background(), Event{
			Action:       ActionCredentialRevoked,
			CredentialID: "cred-1",
			Timestamp:    time.Now().UTC(),
		}))
	}
	publisher.Close()

	events, err := publisher.List(context.Background(), "cred-1")
	s.Require().NoError(err)
	s.Len(events, 5)
}

func (s *StorePublisherSuite) TestEventsKeyedByCredential() {
	store := NewInMemoryStore()
	publisher := NewStorePublisher(store)

	s.Require().NoError(publisher.Emit(context.Background(), Event{Action: ActionCredentialIssued, CredentialID: "cred-a"}))
	s.Require().NoError(publisher.Emit(context.Background(), Event{Action: ActionCredentialIssued, CredentialID: "cred-b"}))

	events, err := publisher.List(context.Background(), "cred-a")
	s.Require().NoError(err)
	s.Len(events, 1)
}
