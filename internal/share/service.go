package share

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gympass/internal/audit"
	"gympass/internal/credential/models"
	"gympass/internal/credential/token"
	"gympass/internal/sentinel"
	dErrors "gympass/pkg/domain-errors"
)

const (
	// DefaultTTL applies when the caller does not request a duration.
	DefaultTTL = 24 * time.Hour
	// MaxTTL caps the requested duration.
	MaxTTL = 168 * time.Hour
)

// CredentialEngine is the slice of the credential service the share service
// needs: snapshot lookup at creation and full re-verification at resolve.
type CredentialEngine interface {
	Get(ctx context.Context, credentialID string) (*models.Record, error)
	Verify(ctx context.Context, compact string) (*token.Result, error)
}

// CreatedShare is returned from CreateShare.
type CreatedShare struct {
	ShareID   string    `json:"share_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Resolution is the public view of a resolved share. Valid reflects a full
// re-verification of the credential, so a share for a since-revoked
// credential reports invalid even while the link itself is live.
type Resolution struct {
	JWT        string             `json:"jwt"`
	Credential *models.Credential `json:"credential,omitempty"`
	Valid      bool               `json:"valid"`
	Message    string             `json:"message"`
}

// Service mints and resolves share links.
type Service struct {
	store       Store
	credentials CredentialEngine
	baseURL     string
	defaultTTL  time.Duration
	maxTTL      time.Duration

	auditor audit.Publisher
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the share service.
type Option func(*Service)

// WithTTLBounds overrides the default and maximum share durations.
func WithTTLBounds(defaultTTL, maxTTL time.Duration) Option {
	return func(s *Service) {
		if defaultTTL > 0 {
			s.defaultTTL = defaultTTL
		}
		if maxTTL > 0 {
			s.maxTTL = maxTTL
		}
	}
}

// WithAuditor configures an audit publisher.
func WithAuditor(auditor audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = auditor
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

// New creates the share service. baseURL is the public prefix share URLs are
// built from, e.g. "https://pass.example.com".
func New(store Store, credentials CredentialEngine, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:       store,
		credentials: credentials,
		baseURL:     strings.TrimRight(baseURL, "/"),
		defaultTTL:  DefaultTTL,
		maxTTL:      MaxTTL,
		auditor:     audit.Noop{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateShare mints a share link for a credential. A zero ttl falls back to
// the default; requests beyond the maximum are capped. Expired shares are
// swept opportunistically on each creation.
func (s *Service) CreateShare(ctx context.Context, credentialID string, ttl time.Duration) (*CreatedShare, error) {
	if credentialID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "credential_id is required")
	}
	if ttl < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "ttl must not be negative")
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if ttl > s.maxTTL {
		ttl = s.maxTTL
	}

	record, err := s.credentials.Get(ctx, credentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not resolve credential")
	}

	now := s.now().UTC()
	share := Share{
		ShareID:      uuid.NewString(),
		CredentialID: record.ID,
		JWTSnapshot:  record.Signed.Token,
		ExpiresAt:    now.Add(ttl),
		CreatedAt:    now,
	}

	if err := s.store.Put(ctx, share); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not persist share")
	}

	if removed, err := s.store.DeleteExpired(ctx, now); err == nil && removed > 0 && s.logger != nil {
		s.logger.Info("expired shares swept", "count", removed)
	}

	s.emit(ctx, audit.Event{Action: audit.ActionShareCreated, CredentialID: record.ID})
	return &CreatedShare{
		ShareID:   share.ShareID,
		URL:       s.url(share.ShareID),
		ExpiresAt: share.ExpiresAt,
	}, nil
}

// Resolve returns the shared credential, re-verified at resolve time.
func (s *Service) Resolve(ctx context.Context, shareID string) (*Resolution, error) {
	share, err := s.store.Get(ctx, shareID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "share not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not load share")
	}

	if share.Expired(s.now()) {
		return nil, dErrors.New(dErrors.CodeExpired, "share link has expired")
	}

	result, err := s.credentials.Verify(ctx, share.JWTSnapshot)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not verify shared credential")
	}

	return &Resolution{
		JWT:        share.JWTSnapshot,
		Credential: result.Credential,
		Valid:      result.Valid(),
		Message:    result.Message,
	}, nil
}

// Revoke removes a share link before its natural expiry. It reports whether
// a share was actually removed.
func (s *Service) Revoke(ctx context.Context, shareID string) (bool, error) {
	if err := s.store.Delete(ctx, shareID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not revoke share")
	}
	s.emit(ctx, audit.Event{Action: audit.ActionShareRevoked})
	return true, nil
}

// ListByCredential returns the credential's live shares, newest first.
func (s *Service) ListByCredential(ctx context.Context, credentialID string) ([]Share, error) {
	shares, err := s.store.ListByCredential(ctx, credentialID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not list shares")
	}

	now := s.now()
	active := make([]Share, 0, len(shares))
	for _, share := range shares {
		if !share.Expired(now) {
			active = append(active, share)
		}
	}
	return active, nil
}

// CleanupExpired removes all expired shares and returns how many were deleted.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not clean up shares")
	}
	if s.logger != nil && removed > 0 {
		s.logger.Info("expired shares removed", "count", removed)
	}
	return removed, nil
}

// Stats summarizes the current share population.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.store.Stats(ctx, s.now())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not compute share stats")
	}
	return stats, nil
}

func (s *Service) url(shareID string) string {
	if s.baseURL == "" {
		return "/shares/" + shareID
	}
	return s.baseURL + "/shares/" + shareID
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	event.Timestamp = s.now().UTC()
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}
