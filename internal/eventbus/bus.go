// Package eventbus fans record events out to in-process subscribers.
// Handlers publish after a successful mutation; delivery happens on a
// separate goroutine so the request path never waits on a consumer.
package eventbus

import (
	"context"
	"log"
	"sync"

	"github.com/matthewbaird/cruder/internal/event"
)

// Handler processes a record event. Implementations must be safe for
// concurrent calls from different goroutines.
type Handler interface {
	HandleEvent(ctx context.Context, evt event.DomainEvent) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt event.DomainEvent) error

func (f HandlerFunc) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	return f(ctx, evt)
}

const defaultBufferSize = 256

// Bus queues events on a buffered channel and delivers them to every
// subscriber from one consumer goroutine. Single-goroutine dispatch keeps
// subscribers ordered with respect to each other and lets store-backed
// consumers share a single write connection safely.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	events chan event.DomainEvent
	done   chan struct{}
}

type subscription struct {
	name    string
	handler Handler
}

// New creates a Bus whose queue holds bufSize events; values below 1 use
// the default size.
func New(bufSize int) *Bus {
	if bufSize < 1 {
		bufSize = defaultBufferSize
	}
	return &Bus{
		events: make(chan event.DomainEvent, bufSize),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a named handler. Must be called before Start.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{name: name, handler: h})
}

// Publish queues an event without blocking. When the queue is full the
// event is dropped and logged; publishers never stall a request on a
// slow consumer.
func (b *Bus) Publish(ctx context.Context, evt event.DomainEvent) {
	select {
	case b.events <- evt:
	default:
		log.Printf("eventbus: queue full, dropping %s (%s)", evt.EventType, evt.ID)
	}
}

// Start launches the consumer goroutine. It runs until the context is
// cancelled, delivering any queued events before exiting.
func (b *Bus) Start(ctx context.Context) {
	go func() {
		defer close(b.done)
		for {
			select {
			case evt := <-b.events:
				b.deliver(ctx, evt)
			case <-ctx.Done():
				for {
					select {
					case evt := <-b.events:
						b.deliver(ctx, evt)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop waits for the consumer goroutine to finish.
func (b *Bus) Stop() {
	close(b.events)
	<-b.done
}

// deliver hands the event to every subscriber in registration order.
// Handler errors are logged and do not stop delivery to the rest.
func (b *Bus) deliver(ctx context.Context, evt event.DomainEvent) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler.HandleEvent(ctx, evt); err != nil {
			log.Printf("eventbus: %s handler failed on %s: %v", s.name, evt.EventType, err)
		}
	}
}
