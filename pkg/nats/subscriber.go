package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"offline-chat-be/pkg/events"

	"github.com/nats-io/nats.go/jetstream"
)

type EventHandler func(ctx context.Context, event events.Event) error

type disposition int

const (
	ack disposition = iota
	// nak asks for redelivery.
	nak
	// term drops a message that can never be handled.
	term
)

// dispatch decodes one message and runs handler on it.
func dispatch(ctx context.Context, data []byte, handler EventHandler) (disposition, error) {
	var env events.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return term, fmt.Errorf("decode event: %w", err)
	}
	if env.Type == "" {
		return term, fmt.Errorf("event without type")
	}
	if err := handler(ctx, env.Event()); err != nil {
		return nak, err
	}
	return ack, nil
}

// Subscribe runs handler for every message on subject through a durable
// consumer that only sees events published from now on.
func (b *Bus) Subscribe(ctx context.Context, subject, durableName string, handler EventHandler) error {
	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.stream, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	consumed, err := consumer.Consume(func(msg jetstream.Msg) {
		outcome, err := dispatch(ctx, msg.Data(), handler)
		if err != nil {
			b.logger.Warn("NATS", "Event not handled", map[string]interface{}{
				"subject": msg.Subject(),
				"error":   err.Error(),
			})
		}

		switch outcome {
		case term:
			_ = msg.Term()
		case nak:
			_ = msg.Nak()
		default:
			_ = msg.Ack()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	b.mu.Lock()
	b.consumed = append(b.consumed, consumed)
	b.mu.Unlock()

	b.logger.Info("NATS", "Subscribed", map[string]interface{}{
		"subject": subject,
		"durable": durableName,
	})
	return nil
}
