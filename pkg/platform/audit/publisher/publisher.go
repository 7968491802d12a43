// Package publisher delivers audit events with at-least-once semantics.
//
// In sync mode Emit blocks until the event is persisted and fails closed.
// In async mode Emit enqueues into a bounded buffer drained by workers; each
// delivery is retried with exponential backoff up to a bounded number of
// attempts, after which the event goes to the dead-letter store. A full
// buffer spills straight to the dead-letter store instead of blocking the
// caller. Replay moves dead letters back through delivery.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	id "warden/pkg/domain"
	audit "warden/pkg/platform/audit"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
)

const (
	causeExhausted  = "exhausted"
	causeBufferFull = "buffer_full"
)

type Publisher struct {
	store       audit.Store
	sinks       []audit.Sink
	deadLetters audit.DeadLetterStore
	logger      *slog.Logger
	metrics     *Metrics
	now         func() time.Time

	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration

	bufferSize int
	workers    int
	buffer     chan audit.Event
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithWorkers(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithSinks adds write-only destinations that receive every event alongside the store.
func WithSinks(sinks ...audit.Sink) Option {
	return func(p *Publisher) {
		p.sinks = append(p.sinks, sinks...)
	}
}

func WithDeadLetterStore(dl audit.DeadLetterStore) Option {
	return func(p *Publisher) {
		p.deadLetters = dl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// WithRetry bounds delivery attempts per event and the backoff between them.
func WithRetry(maxAttempts int, initial, maxInterval time.Duration) Option {
	return func(p *Publisher) {
		if maxAttempts > 0 {
			p.maxAttempts = maxAttempts
		}
		if initial > 0 {
			p.initialInterval = initial
		}
		if maxInterval > 0 {
			p.maxInterval = maxInterval
		}
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:           store,
		logger:          slog.Default(),
		now:             time.Now,
		maxAttempts:     5,
		initialInterval: 100 * time.Millisecond,
		maxInterval:     5 * time.Second,
		workers:         1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.buffer = make(chan audit.Event, p.bufferSize)
		for range p.workers {
			p.wg.Add(1)
			go p.run()
		}
	}
	return p
}

// Emit records an event. It fills in ID, timestamp and category when missing.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event = p.prepare(event)

	if p.buffer == nil {
		if err := p.deliver(ctx, event); err != nil {
			p.logger.ErrorContext(ctx, "audit delivery failed",
				"action", event.Action,
				"event_id", event.ID,
				"error", err,
			)
			return fmt.Errorf("audit persistence failed: %w", err)
		}
		p.metrics.incEmitted(string(event.Category))
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.buffer <- event:
		p.metrics.incEmitted(string(event.Category))
		p.metrics.setQueueDepth(len(p.buffer))
		return nil
	default:
		return p.spill(ctx, event)
	}
}

// List returns stored events for a user.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Replay redelivers up to limit dead letters, removing each one that succeeds.
func (p *Publisher) Replay(ctx context.Context, limit int) (int, error) {
	if p.deadLetters == nil {
		return 0, nil
	}
	letters, err := p.deadLetters.ListDeadLetters(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list dead letters: %w", err)
	}
	replayed := 0
	for _, dl := range letters {
		if err := p.deliverOnce(ctx, dl.Event); err != nil {
			p.logger.WarnContext(ctx, "audit replay failed",
				"event_id", dl.Event.ID,
				"error", err,
			)
			continue
		}
		if err := p.deadLetters.DeleteDeadLetter(ctx, dl.Event.ID); err != nil {
			return replayed, fmt.Errorf("delete dead letter: %w", err)
		}
		replayed++
		p.metrics.incReplayed()
	}
	return replayed, nil
}

// Close stops accepting events and waits until the buffer is drained.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.buffer != nil {
		close(p.buffer)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) prepare(event audit.Event) audit.Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	return event
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.buffer {
		p.metrics.setQueueDepth(len(p.buffer))
		if err := p.deliver(context.Background(), event); err != nil {
			p.logger.Error("audit event dead-lettered",
				"action", event.Action,
				"event_id", event.ID,
				"error", err,
			)
		}
	}
}

// deliver retries failed targets with backoff and dead-letters the event once
// attempts are exhausted. Targets that already succeeded are not retried.
func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	pending := p.targets()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialInterval
	b.MaxInterval = p.maxInterval
	b.MaxElapsedTime = 0
	b.Reset()

	var lastErr error
retry:
	for attempt := 1; ; attempt++ {
		pending, lastErr = appendAll(ctx, pending, event)
		if len(pending) == 0 {
			return nil
		}
		if attempt >= p.maxAttempts {
			break
		}
		p.metrics.incRetries()
		select {
		case <-ctx.Done():
			lastErr = errors.Join(lastErr, ctx.Err())
			break retry
		case <-time.After(b.NextBackOff()):
		}
	}

	if p.deadLetters == nil {
		return lastErr
	}
	dl := audit.DeadLetter{Event: event, Cause: lastErr.Error(), Attempts: p.maxAttempts, FailedAt: p.now()}
	if err := p.deadLetters.AppendDeadLetter(context.WithoutCancel(ctx), dl); err != nil {
		return errors.Join(lastErr, fmt.Errorf("dead-letter append: %w", err))
	}
	p.metrics.incDeadLettered(causeExhausted)
	return lastErr
}

func (p *Publisher) deliverOnce(ctx context.Context, event audit.Event) error {
	_, err := appendAll(ctx, p.targets(), event)
	return err
}

func (p *Publisher) spill(ctx context.Context, event audit.Event) error {
	if p.deadLetters == nil {
		return ErrBufferFull
	}
	dl := audit.DeadLetter{Event: event, Cause: causeBufferFull, FailedAt: p.now()}
	if err := p.deadLetters.AppendDeadLetter(ctx, dl); err != nil {
		return errors.Join(ErrBufferFull, err)
	}
	p.metrics.incDeadLettered(causeBufferFull)
	p.logger.WarnContext(ctx, "audit buffer full, event spilled to dead-letter store",
		"action", event.Action,
		"event_id", event.ID,
	)
	return nil
}

func (p *Publisher) targets() []audit.Sink {
	targets := make([]audit.Sink, 0, len(p.sinks)+1)
	targets = append(targets, p.store)
	return append(targets, p.sinks...)
}

func appendAll(ctx context.Context, targets []audit.Sink, event audit.Event) ([]audit.Sink, error) {
	var (
		failed []audit.Sink
		errs   []error
	)
	for _, t := range targets {
		if err := t.Append(ctx, event); err != nil {
			failed = append(failed, t)
			errs = append(errs, err)
		}
	}
	return failed, errors.Join(errs...)
}
