// Package nats carries chat domain events over a JetStream stream so several
// server instances see the same status updates.
package nats

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"offline-chat-be/internal/pkg/logger"
	"offline-chat-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	SubjectPrefix = "chat"

	streamSetupTimeout = 5 * time.Second
)

// Subject maps an event type to its subject, e.g. CHAT_TURN_APPENDED becomes
// chat.chat_turn_appended.
func Subject(eventType string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, strings.ToLower(eventType))
}

// Bus publishes and consumes on one connection.
type Bus struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream string
	logger logger.ILogger

	mu       sync.Mutex
	consumed []jetstream.ConsumeContext
}

var _ events.Publisher = (*Bus)(nil)

// Connect dials url and makes sure stream exists with a one day retention.
func Connect(url, stream string, log logger.ILogger) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), streamSetupTimeout)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      stream,
		Subjects:  []string{SubjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", stream, err)
	}

	log.Info("NATS", "Connected to event stream", map[string]interface{}{
		"url":    url,
		"stream": stream,
	})
	return &Bus{nc: nc, js: js, stream: stream, logger: log}, nil
}

func (b *Bus) Close() {
	b.mu.Lock()
	for _, c := range b.consumed {
		c.Stop()
	}
	b.consumed = nil
	b.mu.Unlock()

	if b.nc != nil {
		b.nc.Close()
	}
}
