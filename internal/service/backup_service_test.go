package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/unitofwork"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backupFixture struct {
	factory        unitofwork.RepositoryFactory
	chats          IChatService
	chatCategories ICategoryService
	notes          INoteService
	noteCategories ICategoryService
	personalities  IPersonalityService
	preferences    IPreferenceService
	history        IPromptHistoryService
	backup         IBackupService
}

func newBackupFixture(t *testing.T) *backupFixture {
	factory := newTestFactory(t)
	clock := newFakeClock()

	f := &backupFixture{
		factory:        factory,
		chats:          NewChatService(factory, nil, testLogger),
		chatCategories: NewCategoryService(entity.CategoryKindChat, factory, nil, testLogger),
		notes:          NewNoteService(factory),
		noteCategories: NewCategoryService(entity.CategoryKindNote, factory, nil, testLogger),
		personalities:  NewPersonalityService(factory),
		preferences:    NewPreferenceService(factory),
		history:        NewPromptHistoryService(factory),
		backup:         NewBackupService(factory, nil, testLogger),
	}
	f.chats.(*chatService).now = clock.Now
	f.notes.(*noteService).now = clock.Now
	return f
}

func (f *backupFixture) populate(t *testing.T) {
	ctx := context.Background()

	work, err := f.chatCategories.Create(ctx, &dto.CreateCategoryRequest{Name: "Work"})
	require.NoError(t, err)

	image := "aGVsbG8="
	chat, err := f.chats.AppendTurn(ctx, "", &entity.Turn{Question: "what is this?", Response: "a cat", HasImage: true, ImageData: &image})
	require.NoError(t, err)
	_, err = f.chats.AppendTurn(ctx, chat.Id, &entity.Turn{Question: "and now?", Response: "a dog"})
	require.NoError(t, err)
	_, err = f.chats.Move(ctx, &dto.MoveChatRequest{Id: chat.Id, CategoryId: work.Id})
	require.NoError(t, err)
	_, err = f.chats.Rename(ctx, &dto.RenameChatRequest{Id: chat.Id, NewName: "Pets"})
	require.NoError(t, err)
	_, err = f.chats.AppendTurn(ctx, "", &entity.Turn{Question: "hello", Response: "hi"})
	require.NoError(t, err)

	_, err = f.noteCategories.Create(ctx, &dto.CreateCategoryRequest{Name: "Ideas"})
	require.NoError(t, err)
	_, err = f.notes.Create(ctx, &dto.CreateNoteRequest{Title: "app", Content: "build it", Category: "Ideas"})
	require.NoError(t, err)
	_, err = f.notes.Create(ctx, &dto.CreateNoteRequest{Title: "loose", Content: "x"})
	require.NoError(t, err)

	poet, err := f.personalities.Create(ctx, &dto.CreatePersonalityRequest{Name: "Poet", Details: "Answer in verse."})
	require.NoError(t, err)
	_, err = f.personalities.Select(ctx, poet.Id)
	require.NoError(t, err)
	_, err = f.preferences.Update(ctx, &dto.UpdatePreferencesRequest{ButtonSize: "large"})
	require.NoError(t, err)

	require.NoError(t, f.history.Record(ctx, "first prompt"))
	require.NoError(t, f.history.Record(ctx, "second prompt"))
}

type snapshot struct {
	Chats          []*dto.ChatResponse
	ChatCategories []*dto.CategoryResponse
	Notes          []*dto.NoteResponse
	NoteCategories []*dto.CategoryResponse
	Personalities  *dto.PersonalityListResponse
	Preferences    *dto.PreferencesResponse
	History        *dto.PromptHistoryResponse
}

func (f *backupFixture) snapshot(t *testing.T) snapshot {
	ctx := context.Background()
	var s snapshot
	var err error

	s.Chats, err = f.chats.List(ctx)
	require.NoError(t, err)
	s.ChatCategories, err = f.chatCategories.List(ctx)
	require.NoError(t, err)
	s.Notes, err = f.notes.GetAll(ctx, "")
	require.NoError(t, err)
	s.NoteCategories, err = f.noteCategories.List(ctx)
	require.NoError(t, err)
	s.Personalities, err = f.personalities.List(ctx)
	require.NoError(t, err)
	s.Preferences, err = f.preferences.Get(ctx)
	require.NoError(t, err)
	s.History, err = f.history.List(ctx)
	require.NoError(t, err)

	// Times come back from storage in UTC; compare instants only.
	for _, c := range s.Chats {
		c.Timestamp = c.Timestamp.UTC()
		for _, turn := range c.Conversation {
			turn.Timestamp = turn.Timestamp.UTC()
		}
	}
	for _, n := range s.Notes {
		n.CreatedAt = n.CreatedAt.UTC()
		n.Timestamp = n.Timestamp.UTC()
	}
	return s
}

func exportRaw(t *testing.T, svc IBackupService) []byte {
	doc, err := svc.Export(context.Background())
	require.NoError(t, err)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestBackupService_Export(t *testing.T) {
	f := newBackupFixture(t)
	f.populate(t)

	doc, err := f.backup.Export(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, doc.README)
	assert.Equal(t, dto.BackupVersion, doc.Metadata.Version)
	assert.Len(t, doc.Structure, 7)
	for _, path := range []string{PathChats, PathChatCategories, PathNotes, PathNoteCategories, PathPersonalities, PathPreferences, PathPromptHistory} {
		assert.Contains(t, doc.Structure, path)
	}

	assert.Equal(t, 2, doc.Metadata.Counts["chats"])
	assert.Equal(t, 2, doc.Metadata.Counts["categories"])
	assert.Equal(t, 2, doc.Metadata.Counts["notes"])
	assert.Equal(t, 2, doc.Metadata.Counts["personalities"])

	t.Run("image payloads are replaced by the marker", func(t *testing.T) {
		var chats []*dto.BackupChat
		require.NoError(t, json.Unmarshal([]byte(doc.Structure[PathChats]), &chats))

		var marked int
		for _, c := range chats {
			for _, turn := range c.Conversation {
				if turn.ImageData != nil {
					assert.Equal(t, entity.AttachmentPlaceholder, *turn.ImageData)
					assert.True(t, turn.HasImage)
					marked++
				}
			}
		}
		assert.Equal(t, 1, marked)
		assert.NotContains(t, doc.Structure[PathChats], "aGVsbG8=")
	})
}

func TestBackupService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newBackupFixture(t)
	source.populate(t)
	raw := exportRaw(t, source.backup)

	target := newBackupFixture(t)
	res, err := target.backup.Import(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Restored["chats"])

	// Image payloads do not survive a backup.
	want := source.snapshot(t)
	for _, c := range want.Chats {
		for _, turn := range c.Conversation {
			turn.ImageData = attachmentMarker(turn.ImageData)
		}
	}
	got := target.snapshot(t)
	assert.Equal(t, want, got)

	t.Run("importing twice is a full replacement, not a merge", func(t *testing.T) {
		_, err := target.chats.AppendTurn(ctx, "", &entity.Turn{Question: "extra", Response: "extra"})
		require.NoError(t, err)

		_, err = target.backup.Import(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, want, target.snapshot(t))
	})
}

func TestBackupService_ImportErrors(t *testing.T) {
	ctx := context.Background()

	cases := map[string]string{
		"not json":                    `{"structure":`,
		"not an object":               `[1, 2, 3]`,
		"no known collection":         `{"something": []}`,
		"bad collection text":         `{"structure": {"conversations/categories.json": "[{\"id\":\"a\",\"name\":\"A\"}]", "conversations/chats.json": "not json"}}`,
		"duplicate ids":               `{"chats": [{"id": "x", "conversation": []}, {"id": "x", "conversation": []}]}`,
		"nameless category":           `{"categories": [{"id": "a", "name": " "}]}`,
		"duplicate personality names": `{"personalities": [{"id": "a", "name": "Ärztin", "details": "d"}, {"id": "b", "name": "ärztin", "details": "d"}]}`,
		"reserved personality name":   `{"personalities": [{"id": "a", "name": "default assistant", "details": "d"}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			f := newBackupFixture(t)
			f.populate(t)
			before := f.snapshot(t)

			_, err := f.backup.Import(ctx, []byte(raw))
			var format *apperror.RestoreFormatError
			require.ErrorAs(t, err, &format)

			assert.Equal(t, before, f.snapshot(t), "nothing is written on a format error")
		})
	}
}

func TestBackupService_ImportLegacy(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)
	f.populate(t)
	before := f.snapshot(t)

	legacy := `{
		"chats": {
			"c1": {"category_id": "gone", "timestamp": "2024-01-02T10:00:00Z",
			       "conversation": [{"timestamp": "2024-01-02T10:00:00Z", "question": "q", "response": "r",
			                         "has_image": true, "image_data": "AAAA"}]}
		},
		"noteCategories": ["Uncategorized", "Journal"],
		"notes": [{"id": "n1", "title": "day one", "content": "text", "category": "Journal",
		           "createdAt": "2024-01-01T08:00:00Z"}],
		"promptHistory": ["newest", "ok", "older"]
	}`

	res, err := f.backup.Import(ctx, []byte(legacy))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"chats": 1, "notes": 1, "note_categories": 2, "prompt_history": 2}, res.Restored)

	after := f.snapshot(t)

	t.Run("present collections are replaced", func(t *testing.T) {
		require.Len(t, after.Chats, 1)
		chat := after.Chats[0]
		assert.Equal(t, "c1", chat.Id)
		assert.Equal(t, entity.UncategorizedId, chat.CategoryId, "unknown category falls back")
		require.Len(t, chat.Conversation, 1)
		require.NotNil(t, chat.Conversation[0].ImageData)
		assert.Equal(t, entity.AttachmentPlaceholder, *chat.Conversation[0].ImageData)

		require.Len(t, after.Notes, 1)
		assert.Equal(t, "Journal", after.Notes[0].Category)
		assert.True(t, after.Notes[0].Timestamp.Equal(after.Notes[0].CreatedAt))

		names := []string{}
		for _, c := range after.NoteCategories {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{entity.UncategorizedName, "Journal"}, names)
		assert.Equal(t, entity.UncategorizedId, after.NoteCategories[0].Id)

		assert.Equal(t, []string{"newest", "older"}, after.History.Prompts)
	})

	t.Run("missing collections are untouched", func(t *testing.T) {
		assert.Equal(t, before.ChatCategories, after.ChatCategories)
		assert.Equal(t, before.Personalities, after.Personalities)
		assert.Equal(t, before.Preferences, after.Preferences)
	})
}

func TestBackupService_ImportSingleExchangeChat(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)

	raw := `{"chats": [
		{"id": "old", "timestamp": "2023-06-01T09:00:00Z", "question": "Is this kept?", "response": "Yes.", "has_image": true},
		{"id": "empty", "timestamp": "2023-06-02T09:00:00Z", "conversation": []}
	]}`
	_, err := f.backup.Import(ctx, []byte(raw))
	require.NoError(t, err)

	chat, err := f.chats.Find(ctx, "old")
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.Equal(t, entity.UncategorizedId, chat.CategoryId)
	require.Len(t, chat.Conversation, 1)
	turn := chat.Conversation[0]
	assert.Equal(t, "Is this kept?", turn.Question)
	assert.Equal(t, "Yes.", turn.Response)
	assert.True(t, turn.HasImage)
	assert.Nil(t, turn.ImageData)
	assert.True(t, turn.Timestamp.Equal(time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC)))

	empty, err := f.chats.Find(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, empty.Conversation)
}

func TestBackupService_ImportReseedsDefaults(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)
	f.populate(t)

	doc := `{"structure": {
		"conversations/categories.json": "[]",
		"personalities/personalities.json": "[{\"id\":\"p1\",\"name\":\"Only\",\"details\":\"d\"}]"
	}}`
	_, err := f.backup.Import(ctx, []byte(doc))
	require.NoError(t, err)

	s := f.snapshot(t)
	require.Len(t, s.ChatCategories, 1)
	assert.Equal(t, entity.UncategorizedId, s.ChatCategories[0].Id)

	for _, c := range s.Chats {
		assert.Equal(t, entity.UncategorizedId, c.CategoryId, "chats of removed categories are kept under uncategorized")
	}

	ids := []string{}
	for _, p := range s.Personalities.Personalities {
		ids = append(ids, p.Id)
	}
	assert.ElementsMatch(t, []string{entity.DefaultPersonalityId, "p1"}, ids)
	assert.Equal(t, entity.DefaultPersonalityId, s.Personalities.SelectedId, "selection of a removed personality falls back")
}
