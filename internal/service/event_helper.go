package service

import (
	"context"

	"offline-chat-be/internal/pkg/logger"
	"offline-chat-be/pkg/events"
)

// publishEvent is best effort. A missing or failing broker never fails the
// operation that produced the event.
func publishEvent(ctx context.Context, pub events.Publisher, log logger.ILogger, eventType string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, events.New(eventType, data)); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
