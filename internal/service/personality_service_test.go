package service

import (
	"context"
	"testing"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonalityService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewPersonalityService(newTestFactory(t))

	pirate, err := svc.Create(ctx, &dto.CreatePersonalityRequest{Name: "Pirate", Details: "Talk like a pirate."})
	require.NoError(t, err)

	t.Run("list puts the default first and reports the selection", func(t *testing.T) {
		list, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, list.Personalities, 2)
		assert.Equal(t, entity.DefaultPersonalityId, list.Personalities[0].Id)
		assert.True(t, list.Personalities[0].IsDefault)
		assert.Equal(t, entity.DefaultPersonalityId, list.SelectedId)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.Create(ctx, &dto.CreatePersonalityRequest{Name: "PIRATE", Details: "x"})
		var duplicate *apperror.DuplicateNameError
		assert.ErrorAs(t, err, &duplicate)
	})

	t.Run("duplicate name folds non-ASCII case", func(t *testing.T) {
		_, err := svc.Create(ctx, &dto.CreatePersonalityRequest{Name: "Ärztin", Details: "x"})
		require.NoError(t, err)
		_, err = svc.Create(ctx, &dto.CreatePersonalityRequest{Name: "ärztin", Details: "y"})
		var duplicate *apperror.DuplicateNameError
		assert.ErrorAs(t, err, &duplicate)
	})

	t.Run("missing fields", func(t *testing.T) {
		var validation *apperror.ValidationError
		_, err := svc.Create(ctx, &dto.CreatePersonalityRequest{Name: "", Details: "x"})
		assert.ErrorAs(t, err, &validation)
		_, err = svc.Create(ctx, &dto.CreatePersonalityRequest{Name: "x", Details: " "})
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("default is protected", func(t *testing.T) {
		var protected *apperror.ProtectedEntityError
		_, err := svc.Update(ctx, &dto.UpdatePersonalityRequest{Id: entity.DefaultPersonalityId, Name: "x", Details: "y"})
		assert.ErrorAs(t, err, &protected)
		assert.ErrorAs(t, svc.Delete(ctx, entity.DefaultPersonalityId), &protected)
	})

	t.Run("update", func(t *testing.T) {
		updated, err := svc.Update(ctx, &dto.UpdatePersonalityRequest{Id: pirate.Id, Name: "Captain", Details: "Arr."})
		require.NoError(t, err)
		assert.Equal(t, "Captain", updated.Name)

		_, err = svc.Update(ctx, &dto.UpdatePersonalityRequest{Id: "missing", Name: "x", Details: "y"})
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestPersonalityService_SelectionAndResolve(t *testing.T) {
	ctx := context.Background()
	svc := NewPersonalityService(newTestFactory(t))

	tutor, err := svc.Create(ctx, &dto.CreatePersonalityRequest{Name: "Tutor", Details: "Explain step by step."})
	require.NoError(t, err)

	resolved, err := svc.ResolveSystemPrompt(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultPersonalityDetails, resolved.SystemPrompt)

	_, err = svc.Select(ctx, tutor.Id)
	require.NoError(t, err)

	resolved, err = svc.ResolveSystemPrompt(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, tutor.Id, resolved.PersonalityId)
	assert.Equal(t, "Explain step by step.", resolved.SystemPrompt)

	resolved, err = svc.ResolveSystemPrompt(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultPersonalityId, resolved.PersonalityId)

	_, err = svc.Select(ctx, "unknown")
	assert.True(t, apperror.IsNotFound(err))

	t.Run("deleting the selected personality falls back to default", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, tutor.Id))

		list, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, entity.DefaultPersonalityId, list.SelectedId)

		resolved, err := svc.ResolveSystemPrompt(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, entity.DefaultPersonalityDetails, resolved.SystemPrompt)
	})
}

func TestPreferenceService(t *testing.T) {
	ctx := context.Background()
	svc := NewPreferenceService(newTestFactory(t))

	prefs, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "medium", prefs.ButtonSize)
	assert.Equal(t, "medium", prefs.TextSize)
	assert.Equal(t, entity.DefaultPersonalityId, prefs.SelectedPersonalityId)

	updated, err := svc.Update(ctx, &dto.UpdatePreferencesRequest{TextSize: "large"})
	require.NoError(t, err)
	assert.Equal(t, "medium", updated.ButtonSize)
	assert.Equal(t, "large", updated.TextSize)

	prefs, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "large", prefs.TextSize)
}
