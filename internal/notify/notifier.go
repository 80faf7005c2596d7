// Package notify carries best-effort realtime events out of the core.
// Delivery is at-most-once: clients must tolerate missed events and can
// always re-fetch current state.
package notify

import "time"

// EventType identifies what changed on a document
type EventType string

const (
	EventLockChanged    EventType = "lock_changed"
	EventVersionCreated EventType = "version_created"
)

// Event is emitted after a successful mutation
type Event struct {
	DocumentID string                 `json:"document_id"`
	Type       EventType              `json:"type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Publisher is the core's fire-and-forget notification capability.
// Publish must never block request handling.
type Publisher interface {
	Publish(event Event)
}

// NoopPublisher discards all events. Used when no realtime transport is
// configured and in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(Event) {}
