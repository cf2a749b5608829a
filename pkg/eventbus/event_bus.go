// Package eventbus carries leadflow events between the API, the scheduler and the dispatcher.
package eventbus

import (
	"context"

	"github.com/dukex/leadflow/pkg/events"
)

// Event is anything published on the leadflow topic. The concrete types
// live in the events package.
type Event interface {
	GetType() events.EventType
}

// EventPublisher is what the automation service and the scheduler publish
// through. key is the "EntityType:EntityID" of the record, so every event
// about one lead lands on the same partition in order.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber feeds the dispatcher. Handle registers one handler per
// event type before Subscribe starts consuming.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a pointer to the decoded event, e.g.
// *events.ActionsResolved. Returning an error asks for redelivery.
type EventHandler func(ctx context.Context, event any) error

// EventBus is one broker connection, in-memory or Kafka, used for both
// directions.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	// GenerateID returns a fresh message id.
	GenerateID() string
}
