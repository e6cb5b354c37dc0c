package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrBufferFull is returned by Emit in async mode when the buffer is saturated.
	ErrBufferFull = errors.New("audit buffer full")
	// ErrClosed is returned by Emit after Close.
	ErrClosed = errors.New("audit publisher closed")
)

// Publisher captures lifecycle events. It is append-only. In sync mode Emit
// writes to every sink before returning; in async mode a single goroutine
// drains a buffered channel and Close waits for it to finish.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	inbox  chan Event
	wg     sync.WaitGroup
}

type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.inbox = make(chan Event, n)
		}
	}
}

// WithSink forwards every event to an additional sink, such as Kafka.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if p.inbox == nil {
		return p.write(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.WarnContext(ctx, "audit event dropped",
			"action", event.Action,
			"application_id", event.ApplicationID.String(),
		)
		return ErrBufferFull
	}
}

// Close stops accepting events and drains the async buffer. It is safe to
// call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.write(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"action", event.Action,
				"application_id", event.ApplicationID.String(),
				"error", err,
			)
		}
	}
}

// write appends to the store, then to each extra sink. Sink failures are
// joined so one unreachable sink does not hide the others.
func (p *Publisher) write(ctx context.Context, event Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
