package events

import (
	"context"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_APPENDED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	ChatTurnAppended  = "CHAT_TURN_APPENDED"
	ChatDeleted       = "CHAT_DELETED"
	CategoryDeleted   = "CATEGORY_DELETED"
	GenerationStarted = "GENERATION_STARTED"
	GenerationStopped = "GENERATION_STOPPED"
	GenerationFailed  = "GENERATION_FAILED"
	DataCleared       = "DATA_CLEARED"
	DataRestored      = "DATA_RESTORED"

	// StatusConnected is sent only to the connection that just opened.
	StatusConnected = "STATUS_CONNECTED"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher is implemented by the NATS publisher and by the websocket hub
// when no broker is configured.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Envelope is the wire form of an event.
type Envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func ToEnvelope(e Event) Envelope {
	return Envelope{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()}
}

func (env Envelope) Event() BaseEvent {
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}
}
