package events

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// wildcardType subscribes a handler to every event type
const wildcardType models.EventType = "*"

// Broadcaster implements EventService with per-type subscriber registries and
// a bounded ring buffer per event type so late-connecting clients can replay
// recent history.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[models.EventType]map[uint64]interfaces.EventHandler
	buffers     map[models.EventType]*ringBuffer
	nextID      uint64
	bufferSize  int
	closed      bool
	logger      arbor.ILogger
}

// subscription implements interfaces.Subscription
type subscription struct {
	b         *Broadcaster
	eventType models.EventType
	id        uint64
	once      sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.b.mu.Lock()
		defer s.b.mu.Unlock()
		if handlers, ok := s.b.subscribers[s.eventType]; ok {
			delete(handlers, s.id)
			if len(handlers) == 0 {
				delete(s.b.subscribers, s.eventType)
			}
		}
	})
}

// ringBuffer holds the last N events of one type
type ringBuffer struct {
	entries []models.TrackingEvent
	next    int
	full    bool
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{entries: make([]models.TrackingEvent, size)}
}

func (r *ringBuffer) add(event models.TrackingEvent) {
	r.entries[r.next] = event
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// snapshot returns buffered events oldest first
func (r *ringBuffer) snapshot() []models.TrackingEvent {
	if !r.full {
		return append([]models.TrackingEvent(nil), r.entries[:r.next]...)
	}
	out := make([]models.TrackingEvent, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	out = append(out, r.entries[:r.next]...)
	return out
}

// NewBroadcaster creates an event broadcaster with the given replay buffer size
func NewBroadcaster(bufferSize int, logger arbor.ILogger) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Broadcaster{
		subscribers: make(map[models.EventType]map[uint64]interfaces.EventHandler),
		buffers:     make(map[models.EventType]*ringBuffer),
		bufferSize:  bufferSize,
		logger:      logger,
	}
}

// Emit publishes an event to all subscribers of its type (and wildcard
// subscribers) and records it in the type's replay buffer. Fan-out is
// synchronous best-effort: a panicking handler is isolated and logged without
// blocking delivery to the remaining subscribers.
func (b *Broadcaster) Emit(eventType models.EventType, payload interface{}) {
	event := models.TrackingEvent{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	buffer, ok := b.buffers[eventType]
	if !ok {
		buffer = newRingBuffer(b.bufferSize)
		b.buffers[eventType] = buffer
	}
	buffer.add(event)

	handlers := make([]interfaces.EventHandler, 0, len(b.subscribers[eventType])+len(b.subscribers[wildcardType]))
	for _, h := range b.subscribers[eventType] {
		handlers = append(handlers, h)
	}
	for _, h := range b.subscribers[wildcardType] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, handler := range handlers {
		b.deliver(handler, event)
	}
}

// deliver invokes one handler with panic isolation
func (b *Broadcaster) deliver(handler interfaces.EventHandler, event models.TrackingEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn().
				Str("event_type", string(event.Type)).
				Str("panic", panicString(r)).
				Msg("Event subscriber panicked, isolating")
		}
	}()
	handler(event)
}

// Subscribe registers a handler for one event type
func (b *Broadcaster) Subscribe(eventType models.EventType, handler interfaces.EventHandler) interfaces.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subscribers[eventType] == nil {
		b.subscribers[eventType] = make(map[uint64]interfaces.EventHandler)
	}
	b.subscribers[eventType][id] = handler

	b.logger.Debug().
		Str("event_type", string(eventType)).
		Int("subscriber_count", len(b.subscribers[eventType])).
		Msg("Event handler subscribed")

	return &subscription{b: b, eventType: eventType, id: id}
}

// SubscribeAll registers a handler for every event type
func (b *Broadcaster) SubscribeAll(handler interfaces.EventHandler) interfaces.Subscription {
	return b.Subscribe(wildcardType, handler)
}

// FlushBuffer replays buffered events to the consumer, oldest first within
// each type, each marked Buffered=true. When no types are given, all buffered
// types are flushed. Replayed events may interleave with live events emitted
// during the flush window; the Buffered flag lets consumers tell them apart.
func (b *Broadcaster) FlushBuffer(consumer interfaces.EventHandler, eventTypes ...models.EventType) {
	b.mu.RLock()
	if len(eventTypes) == 0 {
		eventTypes = make([]models.EventType, 0, len(b.buffers))
		for t := range b.buffers {
			eventTypes = append(eventTypes, t)
		}
	}
	var buffered []models.TrackingEvent
	for _, t := range eventTypes {
		if buffer, ok := b.buffers[t]; ok {
			buffered = append(buffered, buffer.snapshot()...)
		}
	}
	b.mu.RUnlock()

	for _, event := range buffered {
		event.Buffered = true
		b.deliver(consumer, event)
	}
}

// Close drops all subscriptions and buffered events
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = make(map[models.EventType]map[uint64]interfaces.EventHandler)
	b.buffers = make(map[models.EventType]*ringBuffer)
	b.closed = true
	b.logger.Info().Msg("Event broadcaster closed")
	return nil
}

func panicString(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "unknown panic"
}
