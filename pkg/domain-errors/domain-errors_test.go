package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Justification: These are core error primitives used at every trust boundary.
// Unit tests ensure invariants like "wrapped domain errors preserve original code"
// and "errors.Is matches by code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeRevoked, Message: "credential has been revoked"}
		s.Equal("credential has been revoked", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeNotFound}
		s.Equal("not_found", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("database connection failed")
		err := &Error{Code: CodeStorageFailure, Message: "service error", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeNotFound, Message: "not found"}
		s.Nil(err.Unwrap())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeExpired, Message: "credential has expired"}
		err2 := &Error{Code: CodeExpired, Message: "token has expired"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeExpired}
		err2 := &Error{Code: CodeRevoked}
		s.False(err1.Is(err2))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves code of wrapped domain error", func() {
		inner := New(CodeAlreadyRevoked, "already revoked")
		wrapped := Wrap(inner, CodeInternal, "revoke failed")
		s.True(HasCode(wrapped, CodeAlreadyRevoked))
	})

	s.Run("applies code to plain errors", func() {
		wrapped := Wrap(errors.New("pq: connection reset"), CodeStorageFailure, "store unavailable")
		s.True(HasCode(wrapped, CodeStorageFailure))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("false for nil", func() {
		s.False(HasCode(nil, CodeNotFound))
	})

	s.Run("false for non-domain error", func() {
		s.False(HasCode(errors.New("plain"), CodeNotFound))
	})

	s.Run("true through error chains", func() {
		inner := New(CodeDuplicateID, "id exists")
		s.True(HasCode(Wrap(inner, CodeInternal, "put failed"), CodeDuplicateID))
	})
}
