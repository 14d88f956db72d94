package interfaces

import (
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// EventHandler receives tracking events. Handlers must not block; a slow or
// broken subscriber is isolated and never stalls emission to its siblings.
type EventHandler func(event models.TrackingEvent)

// Subscription is an opaque handle returned by Subscribe, used to unsubscribe
type Subscription interface {
	// Unsubscribe removes the handler; no events are delivered afterwards
	// and the broadcaster retains no reference to the handler.
	Unsubscribe()
}

// EventService is the publish/subscribe hub decoupling the job manager and
// scraper from the HTTP streaming handlers.
type EventService interface {
	// Emit publishes an event of the given type to all current subscribers
	// and appends it to the type's replay buffer.
	Emit(eventType models.EventType, payload interface{})

	// Subscribe registers a handler for one event type
	Subscribe(eventType models.EventType, handler EventHandler) Subscription

	// SubscribeAll registers a handler for every event type
	SubscribeAll(handler EventHandler) Subscription

	// FlushBuffer replays buffered events of the given types (all types when
	// empty) to the consumer, oldest first, each marked Buffered=true.
	FlushBuffer(consumer EventHandler, eventTypes ...models.EventType)

	// Close drops all subscriptions and buffered events
	Close() error
}
