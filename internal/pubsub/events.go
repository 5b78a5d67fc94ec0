// Package pubsub provides the in-process publish/subscribe fabric used to
// push layout changes to interested parties: the binding store publishes
// data updates, the preference service publishes saves, and the SSE hub
// relays both to connected clients.
package pubsub

import (
	"context"
	"time"
)

// EventType classifies a published event.
type EventType string

const (
	BindingUpdated  EventType = "binding.updated"
	PreferenceSaved EventType = "preference.saved"
	LayoutPublished EventType = "layout.published"
	ThemeChanged    EventType = "theme.changed"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
