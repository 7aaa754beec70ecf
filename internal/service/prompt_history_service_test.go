package service

import (
	"context"
	"fmt"
	"testing"

	"offline-chat-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptHistoryService(t *testing.T) {
	ctx := context.Background()

	t.Run("hello twice is one entry moved to the front", func(t *testing.T) {
		svc := NewPromptHistoryService(newTestFactory(t))

		require.NoError(t, svc.Record(ctx, "hello"))
		require.NoError(t, svc.Record(ctx, "world"))
		require.NoError(t, svc.Record(ctx, "hello"))

		history, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"hello", "world"}, history.Prompts)
	})

	t.Run("short and blank text is ignored", func(t *testing.T) {
		svc := NewPromptHistoryService(newTestFactory(t))

		require.NoError(t, svc.Record(ctx, "  hi  "))
		require.NoError(t, svc.Record(ctx, "   "))
		require.NoError(t, svc.Record(ctx, "  hey "))

		history, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"hey"}, history.Prompts)
	})

	t.Run("history is capped", func(t *testing.T) {
		svc := NewPromptHistoryService(newTestFactory(t))

		for i := 0; i < entity.PromptHistoryLimit+5; i++ {
			require.NoError(t, svc.Record(ctx, fmt.Sprintf("prompt %d", i)))
		}

		history, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, history.Prompts, entity.PromptHistoryLimit)
		assert.Equal(t, fmt.Sprintf("prompt %d", entity.PromptHistoryLimit+4), history.Prompts[0])
		assert.Equal(t, "prompt 5", history.Prompts[entity.PromptHistoryLimit-1])
	})

	t.Run("clear", func(t *testing.T) {
		svc := NewPromptHistoryService(newTestFactory(t))
		require.NoError(t, svc.Record(ctx, "something"))
		require.NoError(t, svc.Clear(ctx))

		history, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, history.Prompts)
	})
}
