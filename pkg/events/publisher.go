package events

import (
	"context"
	"log/slog"
	"sync"
)

// Sink receives events from the Publisher. Implementations must be safe for
// concurrent use.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher emits notification events to a sink, either synchronously or
// through a buffered background worker. Emission is best-effort: a failing
// sink never fails the domain operation that produced the event.
type Publisher struct {
	sink   Sink
	logger *slog.Logger

	// async mode. mu orders buffer sends against Close: Emit holds the read
	// lock while sending, Close takes the write lock before closing the
	// buffer, so a send can never hit a closed channel.
	buffer  chan Event
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	once    sync.Once
	isAsync bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
// Close drains the buffer before returning.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.isAsync = true
		p.buffer = make(chan Event, size)
	}
}

// WithLogger sets the logger used for emit failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a Publisher over the given sink.
func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.isAsync {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit publishes an event. In async mode the event is queued; a full buffer
// falls back to synchronous publishing rather than dropping the event.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if !p.isAsync {
		return p.publish(ctx, event)
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return p.publish(ctx, event)
	}
	select {
	case p.buffer <- event:
		p.mu.RUnlock()
		return nil
	default:
		p.mu.RUnlock()
		return p.publish(ctx, event)
	}
}

// Close stops the background worker, draining any queued events first.
// Emit stays safe to call after Close; it publishes synchronously.
func (p *Publisher) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		if p.isAsync {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		_ = p.publish(context.Background(), event)
	}
}

func (p *Publisher) publish(ctx context.Context, event Event) error {
	if err := p.sink.Publish(ctx, event); err != nil {
		p.logger.Error("failed to publish notification event",
			"kind", event.Kind,
			"case_id", event.CaseID,
			"error", err,
		)
		return err
	}
	return nil
}
