package bridge

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vextm/tm-bridge/internal/domain/field"
)

// Subscription is one consumer's ordered view of a field set's change events.
// The channel is bounded; when the consumer falls behind, the oldest buffered
// event is dropped in favour of the newest, which the consumer can detect as
// a jump in sequence numbers.
type Subscription struct {
	// id uniquely identifies the subscription within its bus.
	id string
	// fieldID is the field set the subscription observes.
	fieldID string
	// events carries change events to the consumer. Closed on unsubscribe.
	events chan field.ChangeEvent
	// bus owns the subscription's registration.
	bus *EventBus
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// FieldID returns the field set the subscription observes.
func (s *Subscription) FieldID() string {
	return s.fieldID
}

// Events returns the consumer-facing event channel. It is closed when the
// subscription ends, whether by Close, field removal or engine shutdown.
func (s *Subscription) Events() <-chan field.ChangeEvent {
	return s.events
}

// Close ends the subscription and releases its resources. Idempotent; safe to
// call after the consumer connection has already gone away.
func (s *Subscription) Close() {
	s.bus.Unsubscribe(s)
}

// EventBus fans a field set's change events out to its subscribers. One bus
// exists per monitored field; delivery never blocks the publisher.
type EventBus struct {
	// fieldID is the field set this bus belongs to.
	fieldID string
	// capacity is the per-subscription channel buffer size.
	capacity int

	// mu protects subs and closed.
	mu sync.Mutex
	// subs holds the live subscriptions by id.
	subs map[string]*Subscription
	// closed marks a bus whose field has been removed or shut down.
	closed bool
}

// newEventBus creates a bus for one field set.
func newEventBus(fieldID string, capacity int) *EventBus {
	if capacity < 1 {
		capacity = 1
	}

	return &EventBus{
		fieldID:  fieldID,
		capacity: capacity,
		subs:     make(map[string]*Subscription),
	}
}

// Subscribe registers a new consumer and enqueues the provided baseline event
// before any live event can be delivered, so every subscriber sees the
// current state first. On a closed bus the returned subscription's channel is
// already closed.
func (b *EventBus) Subscribe(baseline field.ChangeEvent) *Subscription {
	sub := &Subscription{
		id:      uuid.NewString(),
		fieldID: b.fieldID,
		events:  make(chan field.ChangeEvent, b.capacity),
		bus:     b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.events)

		return sub
	}

	sub.events <- baseline
	b.subs[sub.id] = sub

	return sub
}

// Publish delivers the event to every live subscription. A full subscriber
// buffer drops its oldest event rather than stalling the publisher or the
// other subscribers.
func (b *EventBus) Publish(ev field.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		deliver(sub.events, ev)
	}
}

// deliver performs a non-blocking send with a drop-oldest overflow policy.
func deliver(ch chan field.ChangeEvent, ev field.ChangeEvent) {
	select {
	case ch <- ev:
		return
	default:
	}

	// Buffer full: evict the oldest event, then try once more. The consumer
	// may race us for the eviction, in which case the second send succeeds
	// with nothing dropped.
	select {
	case <-ch:
	default:
	}

	select {
	case ch <- ev:
	default:
	}
}

// Unsubscribe removes the subscription and closes its channel. Idempotent.
func (b *EventBus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; !ok {
		return
	}

	delete(b.subs, sub.id)
	close(sub.events)
}

// Close ends every subscription and rejects future ones. Idempotent.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.events)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *EventBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}
