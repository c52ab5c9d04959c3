// Package events delivers domain events to the configured notification transport.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
)

const (
	defaultBufferSize     = 256
	defaultPublishTimeout = 10 * time.Second
)

// Dispatcher queues events and publishes them on a single worker goroutine,
// so delivery order matches dispatch order.
type Dispatcher struct {
	publisher portssvc.EventPublisher
	logger    *slog.Logger
	timeout   time.Duration

	queue   chan domain.DomainEvent
	done    chan struct{}
	closeMu sync.RWMutex
	closed  bool
}

var _ portssvc.EventDispatcher = (*Dispatcher)(nil)

// DispatcherOption is a functional option for configuring the dispatcher
type DispatcherOption func(*Dispatcher)

// WithBufferSize sets the queue capacity.
func WithBufferSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan domain.DomainEvent, n)
		}
	}
}

// WithPublishTimeout bounds each publish call.
func WithPublishTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// NewDispatcher starts the worker goroutine. Call Close to drain and stop it.
func NewDispatcher(publisher portssvc.EventPublisher, logger *slog.Logger, options ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		publisher: publisher,
		logger:    logger,
		timeout:   defaultPublishTimeout,
		queue:     make(chan domain.DomainEvent, defaultBufferSize),
		done:      make(chan struct{}),
	}
	for _, option := range options {
		option(d)
	}
	go d.run()
	return d
}

// Dispatch enqueues events. It blocks while the queue is full unless ctx ends first,
// in which case the remaining events are dropped and logged.
func (d *Dispatcher) Dispatch(ctx context.Context, events []domain.DomainEvent) {
	d.closeMu.RLock()
	defer d.closeMu.RUnlock()
	if d.closed {
		d.logger.Warn("Dispatcher closed, dropping events", slog.Int("count", len(events)))
		return
	}

	for i, event := range events {
		select {
		case d.queue <- event:
		case <-ctx.Done():
			d.logger.Warn("Context ended before events were queued",
				slog.Int("dropped", len(events)-i),
				slog.String("error", ctx.Err().Error()))
			return
		}
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.publish(event)
	}
}

func (d *Dispatcher) publish(event domain.DomainEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Error("Failed to publish domain event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.EventID),
			slog.String("kind", string(event.Kind)),
			slog.String("invoice_id", event.InvoiceID))
	}
}

// Close stops accepting events, waits for the queue to drain, and closes the publisher.
func (d *Dispatcher) Close() error {
	d.closeMu.Lock()
	if d.closed {
		d.closeMu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.closeMu.Unlock()

	<-d.done
	return d.publisher.Close()
}
