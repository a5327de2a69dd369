// Package service orchestrates the credential lifecycle: issuance, signing,
// persistence, verification, revocation, and administrative listing.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gympass/internal/audit"
	"gympass/internal/credential/builder"
	"gympass/internal/credential/metrics"
	"gympass/internal/credential/models"
	"gympass/internal/credential/store"
	"gympass/internal/credential/token"
	"gympass/internal/directory"
	"gympass/internal/issuer"
	"gympass/internal/sentinel"
	dErrors "gympass/pkg/domain-errors"
)

// IssueRequest captures the data required to issue a credential.
// Either HolderDID or a resolvable UserID must be supplied.
type IssueRequest struct {
	HolderDID    string
	UserID       string
	BenefitID    string
	MembershipID string
}

// Service is the credential lifecycle engine façade.
type Service struct {
	identity *issuer.Identity
	store    store.Store
	benefits directory.BenefitDirectory
	users    directory.UserDirectory

	builder  *builder.Builder
	signer   *token.Signer
	verifier *token.Verifier

	auditor audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithAuditor configures an audit publisher for the service.
func WithAuditor(auditor audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics configures lifecycle metrics for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the wall clock, for tests. The signer, verifier, and
// builder all observe the same clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates the credential service around an issuer identity and a store.
func New(identity *issuer.Identity, st store.Store, benefits directory.BenefitDirectory, users directory.UserDirectory, opts ...Option) *Service {
	s := &Service{
		identity: identity,
		store:    st,
		benefits: benefits,
		users:    users,
		auditor:  audit.Noop{},
		tracer:   otel.Tracer("gympass/credential"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	clock := func() time.Time { return s.now() }
	s.builder = builder.New(builder.WithClock(clock))
	s.signer = token.NewSigner(identity, token.WithSignerClock(clock))
	s.verifier = token.NewVerifier(
		identity.DID(),
		identity.PublicKey(),
		storeRevocations{store: st},
		token.WithVerifierClock(clock),
	)
	return s
}

// storeRevocations adapts the credential store to the verifier's revocation
// lookup. A missing record is not revoked; only store failures are errors.
type storeRevocations struct {
	store store.Store
}

func (a storeRevocations) Revoked(ctx context.Context, credentialID string) (bool, error) {
	record, err := a.store.Get(ctx, credentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return record.Revoked(), nil
}

// Issue builds, signs, and persists a credential for the request's holder and
// benefit. The stored record starts Active.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*models.Record, error) {
	start := s.now()

	if req.BenefitID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "benefit_id is required")
	}

	holderDID, err := s.resolveHolder(ctx, req)
	if err != nil {
		return nil, err
	}

	benefit, err := s.benefits.Benefit(ctx, req.BenefitID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "benefit not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not resolve benefit")
	}

	cred, err := s.builder.Build(s.identity.DID(), holderDID, benefit, req.MembershipID)
	if err != nil {
		return nil, err
	}

	signed, err := s.signer.Sign(cred)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not sign credential")
	}

	now := s.now().UTC()
	record := models.Record{
		ID:           cred.ID,
		Signed:       *signed,
		HolderDID:    holderDID,
		BenefitID:    benefit.ID,
		MembershipID: req.MembershipID,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Put(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeDuplicateID, "credential id already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not persist credential")
	}

	s.emit(ctx, audit.Event{
		Action:       audit.ActionCredentialIssued,
		CredentialID: record.ID,
		HolderDID:    holderDID,
		BenefitID:    benefit.ID,
	})
	if s.metrics != nil {
		s.metrics.CredentialsIssued.Inc()
		s.metrics.IssueDurationSeconds.Observe(s.now().Sub(start).Seconds())
	}
	if s.logger != nil {
		s.logger.Info("credential issued",
			"credential_id", record.ID,
			"holder_did", holderDID,
			"benefit_id", benefit.ID,
		)
	}

	return &record, nil
}

func (s *Service) resolveHolder(ctx context.Context, req IssueRequest) (string, error) {
	if req.HolderDID != "" {
		return req.HolderDID, nil
	}
	if req.UserID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "holder DID or user id is required")
	}

	holder, err := s.users.Holder(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeValidation, "holder could not be resolved")
		}
		return "", dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not resolve holder")
	}
	return holder.DID, nil
}

// Verify runs the ordered verification pipeline on a compact token.
// Expected failures come back as verdicts; an error means the input was
// unparsable or validity could not be determined.
func (s *Service) Verify(ctx context.Context, compact string) (*token.Result, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "credential.verify")
	defer span.End()

	result, err := s.verifier.Verify(ctx, compact)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("verdict", string(result.Verdict)))
	if s.metrics != nil {
		s.metrics.VerificationsTotal.WithLabelValues(string(result.Verdict)).Inc()
		s.metrics.VerifyDurationSeconds.Observe(s.now().Sub(start).Seconds())
	}
	return result, nil
}

// Revoke transitions a credential to revoked, exactly once.
func (s *Service) Revoke(ctx context.Context, credentialID, reason string) error {
	if err := s.store.SetStatus(ctx, credentialID, models.StatusRevoked, reason); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "credential not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return dErrors.New(dErrors.CodeAlreadyRevoked, "credential has already been revoked")
		default:
			return dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not revoke credential")
		}
	}

	s.emit(ctx, audit.Event{
		Action:       audit.ActionCredentialRevoked,
		CredentialID: credentialID,
		Reason:       reason,
	})
	if s.metrics != nil {
		s.metrics.CredentialsRevoked.Inc()
	}
	if s.logger != nil {
		s.logger.Info("credential revoked", "credential_id", credentialID, "reason", reason)
	}
	return nil
}

// Get returns a stored credential record.
func (s *Service) Get(ctx context.Context, credentialID string) (*models.Record, error) {
	record, err := s.store.Get(ctx, credentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not load credential")
	}
	return record, nil
}

// List returns a page of credential records, newest first.
func (s *Service) List(ctx context.Context, filter models.ListFilter, page, pageSize int) (*models.Page, error) {
	result, err := s.store.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not list credentials")
	}
	return result, nil
}

// Delete removes a credential record entirely. This is the administrative
// delete, distinct from revocation: it erases history.
func (s *Service) Delete(ctx context.Context, credentialID string) error {
	if err := s.store.Delete(ctx, credentialID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return dErrors.Wrap(err, dErrors.CodeStorageFailure, "could not delete credential")
	}

	s.emit(ctx, audit.Event{
		Action:       audit.ActionCredentialDeleted,
		CredentialID: credentialID,
	})
	if s.metrics != nil {
		s.metrics.CredentialsDeleted.Inc()
	}
	return nil
}

// IssuerDID returns the DID credentials are issued under.
func (s *Service) IssuerDID() string {
	return s.identity.DID()
}

// IssuerDocument returns the issuer's DID Document for the well-known endpoint.
func (s *Service) IssuerDocument() (*issuer.Document, error) {
	return s.identity.Document()
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	event.Timestamp = s.now().UTC()
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}
