package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// StorePublisher persists events through a Store. It is the default sink when
// Kafka is not configured, and tests can read events back per credential.
type StorePublisher struct {
	store  Store
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

// StorePublisherOption configures the StorePublisher.
type StorePublisherOption func(*StorePublisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) StorePublisherOption {
	return func(p *StorePublisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) StorePublisherOption {
	return func(p *StorePublisher) {
		p.logger = logger
	}
}

func NewStorePublisher(store Store, opts ...StorePublisherOption) *StorePublisher {
	p := &StorePublisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

// processEvents runs in a goroutine and persists events from the channel.
func (p *StorePublisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil {
			if p.logger != nil {
				p.logger.Error("failed to persist audit event",
					"error", err,
					"action", event.Action,
					"credential_id", event.CredentialID,
				)
			}
		}
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *StorePublisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit implements Publisher.
func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if p.async {
		// Non-blocking send; drop the event rather than stall the hot path.
		select {
		case p.events <- event:
			return nil
		default:
			if p.logger != nil {
				p.logger.Warn("audit buffer full, event dropped",
					"action", event.Action,
					"credential_id", event.CredentialID,
				)
			}
			return nil
		}
	}
	return p.store.Append(ctx, event)
}

// List returns the audit trail for a credential.
func (p *StorePublisher) List(ctx context.Context, credentialID string) ([]Event, error) {
	return p.store.ListByCredential(ctx, credentialID)
}
