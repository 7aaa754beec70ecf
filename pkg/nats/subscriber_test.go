package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"offline-chat-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "chat.chat_turn_appended", Subject("CHAT_TURN_APPENDED"))
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	evt := events.New("CHAT_DELETED", map[string]interface{}{"chat_id": "c1"})
	evt.OccurredAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	valid, err := json.Marshal(events.ToEnvelope(evt))
	require.NoError(t, err)

	t.Run("handled", func(t *testing.T) {
		var got events.Event
		outcome, err := dispatch(ctx, valid, func(ctx context.Context, e events.Event) error {
			got = e
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, ack, outcome)
		assert.Equal(t, "CHAT_DELETED", got.EventType())
		assert.Equal(t, "c1", got.Payload()["chat_id"])
		assert.True(t, evt.OccurredAt.Equal(got.Timestamp()))
	})

	t.Run("handler failure is redelivered", func(t *testing.T) {
		outcome, err := dispatch(ctx, valid, func(ctx context.Context, e events.Event) error {
			return errors.New("hub closed")
		})
		assert.Error(t, err)
		assert.Equal(t, nak, outcome)
	})

	t.Run("garbage is dropped", func(t *testing.T) {
		called := false
		handler := func(ctx context.Context, e events.Event) error {
			called = true
			return nil
		}

		outcome, err := dispatch(ctx, []byte("not json"), handler)
		assert.Error(t, err)
		assert.Equal(t, term, outcome)

		outcome, _ = dispatch(ctx, []byte(`{"data":{}}`), handler)
		assert.Equal(t, term, outcome)
		assert.False(t, called)
	})
}
