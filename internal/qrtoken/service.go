package qrtoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"gympass/internal/audit"
	"gympass/internal/credential/models"
	"gympass/internal/sentinel"
	dErrors "gympass/pkg/domain-errors"
)

const (
	// DefaultClientTTL is the expiry for tokens handed to the member app.
	DefaultClientTTL = 60 * time.Second

	tokenBytes = 16
)

// permanentHorizon keeps permanent tokens formally time-bounded while they
// outlive any plausible deployment.
const permanentHorizon = 100 * 365 * 24 * time.Hour

// CredentialSource resolves credential records for minted tokens.
type CredentialSource interface {
	Get(ctx context.Context, credentialID string) (*models.Record, error)
}

// Service mints and resolves ephemeral QR tokens.
type Service struct {
	store       Store
	credentials CredentialSource
	clientTTL   time.Duration

	auditor audit.Publisher
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the token service.
type Option func(*Service)

// WithClientTTL overrides the client token expiry.
func WithClientTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.clientTTL = ttl
		}
	}
}

// WithAuditor configures an audit publisher.
func WithAuditor(auditor audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithMetrics configures token metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates the token service over a store and a credential source.
func New(store Store, credentials CredentialSource, opts ...Option) *Service {
	s := &Service{
		store:       store,
		credentials: credentials,
		clientTTL:   DefaultClientTTL,
		auditor:     audit.Noop{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mint creates a single-use client token for a credential.
func (s *Service) Mint(ctx context.Context, credentialID string) (*Token, error) {
	return s.mint(ctx, credentialID, false)
}

// MintPermanent creates a reusable, non-expiring token for a credential.
// Intended for front-desk displays, not member devices.
func (s *Service) MintPermanent(ctx context.Context, credentialID string) (*Token, error) {
	return s.mint(ctx, credentialID, true)
}

func (s *Service) mint(ctx context.Context, credentialID string, permanent bool) (*Token, error) {
	if credentialID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "credential_id is required")
	}

	if _, err := s.credentials.Get(ctx, credentialID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not resolve credential")
	}

	opaque, err := randomToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token")
	}

	now := s.now().UTC()
	ttl := s.clientTTL
	if permanent {
		ttl = permanentHorizon
	}
	token := Token{
		Token:        opaque,
		CredentialID: credentialID,
		ExpiresAt:    now.Add(ttl),
		Permanent:    permanent,
		CreatedAt:    now,
	}

	if err := s.store.Put(ctx, token); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not persist token")
	}

	s.emit(ctx, audit.Event{Action: audit.ActionTokenMinted, CredentialID: credentialID})
	if s.metrics != nil {
		s.metrics.MintedTotal.WithLabelValues(kind(permanent)).Inc()
	}
	return &token, nil
}

// Resolve exchanges a token for its credential record. Client tokens are
// consumed atomically: of concurrent resolves exactly one succeeds, the rest
// see TokenUsed. Expired tokens are evicted lazily.
func (s *Service) Resolve(ctx context.Context, opaque string) (*models.Record, error) {
	token, err := s.store.Get(ctx, opaque)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.outcome("not_found")
			return nil, dErrors.New(dErrors.CodeNotFound, "token not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not load token")
	}

	if !token.Permanent {
		if s.now().After(token.ExpiresAt) {
			if err := s.store.Delete(ctx, opaque); err != nil && !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
				s.logger.Warn("evict expired token failed", "error", err)
			}
			s.outcome("expired")
			return nil, dErrors.New(dErrors.CodeTokenExpired, "token has expired")
		}

		if err := s.store.Consume(ctx, opaque); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				s.outcome("used")
				return nil, dErrors.New(dErrors.CodeTokenUsed, "token has already been used")
			case errors.Is(err, sentinel.ErrNotFound):
				s.outcome("not_found")
				return nil, dErrors.New(dErrors.CodeNotFound, "token not found")
			default:
				return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not consume token")
			}
		}
	}

	record, err := s.credentials.Get(ctx, token.CredentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.outcome("not_found")
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not load credential")
	}

	s.outcome("resolved")
	return record, nil
}

// Revoke deletes a token before its natural expiry.
func (s *Service) Revoke(ctx context.Context, opaque string) error {
	if err := s.store.Delete(ctx, opaque); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "token not found")
		}
		return dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not revoke token")
	}
	s.emit(ctx, audit.Event{Action: audit.ActionTokenRevoked})
	return nil
}

// Cleanup removes all expired tokens and returns how many were deleted.
// Meant for periodic invocation, not for the resolve path.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not clean up tokens")
	}
	if s.metrics != nil && removed > 0 {
		s.metrics.CleanedTotal.Add(float64(removed))
	}
	if s.logger != nil && removed > 0 {
		s.logger.Info("expired tokens removed", "count", removed)
	}
	return removed, nil
}

func (s *Service) outcome(label string) {
	if s.metrics != nil {
		s.metrics.ResolutionsTotal.WithLabelValues(label).Inc()
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	event.Timestamp = s.now().UTC()
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}

func randomToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func kind(permanent bool) string {
	if permanent {
		return "permanent"
	}
	return "client"
}
