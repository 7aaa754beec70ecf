package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type askFixture struct {
	ask           IAskService
	chats         IChatService
	personalities IPersonalityService
	provider      *fakeProvider
	analysis      *recordingAnalysis
	events        *recordingPublisher
}

func newAskFixture(t *testing.T, provider *fakeProvider) *askFixture {
	factory := newTestFactory(t)
	pub := &recordingPublisher{}
	analysis := &recordingAnalysis{}
	chats := NewChatService(factory, pub, testLogger)
	personalities := NewPersonalityService(factory)

	return &askFixture{
		ask: NewAskService(chats, personalities, provider, NewGenerationTracker(), analysis, pub, testLogger, AskServiceConfig{
			Model:            "test-model",
			MaxContextTokens: 32000,
		}),
		chats:         chats,
		personalities: personalities,
		provider:      provider,
		analysis:      analysis,
		events:        pub,
	}
}

func waitStarted(t *testing.T, started chan struct{}) {
	t.Helper()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("model call never started")
	}
}

func TestAskService_Success(t *testing.T) {
	ctx := context.Background()
	f := newAskFixture(t, &fakeProvider{reply: "Hi there."})

	res, err := f.ask.Ask(ctx, &dto.AskRequest{Text: "Hello", ImageData: "data:image/png;base64,aGVsbG8="})
	require.NoError(t, err)
	assert.Equal(t, "Hi there.", res.Response)
	assert.False(t, res.Stopped)
	assert.NotEmpty(t, res.ChatId)
	require.Len(t, res.Conversation, 1)
	assert.True(t, res.Conversation[0].HasImage)
	require.NotNil(t, res.Performance)

	messages := f.provider.lastMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, entity.DefaultPersonalityDetails, messages[0].Content)
	assert.Equal(t, []string{"aGVsbG8="}, messages[1].Images)

	assert.Equal(t, 1, f.analysis.count())
	var analysis dto.GenerationAnalysisMessage
	require.NoError(t, json.Unmarshal(f.analysis.payloads[0], &analysis))
	assert.Equal(t, OutcomeCompleted, analysis.Outcome)
	assert.Equal(t, res.ChatId, analysis.ChatId)
	assert.Equal(t, "test-model", analysis.Model)
	assert.Contains(t, f.events.types(), "CHAT_TURN_APPENDED")

	t.Run("follow-up carries history with an image marker", func(t *testing.T) {
		next, err := f.ask.Ask(ctx, &dto.AskRequest{Text: "And now?", ChatId: res.ChatId, SystemPrompt: "Be brief."})
		require.NoError(t, err)
		assert.Equal(t, res.ChatId, next.ChatId)
		assert.Len(t, next.Conversation, 2)

		messages := f.provider.lastMessages()
		require.Len(t, messages, 4)
		assert.Equal(t, "Be brief.", messages[0].Content)
		assert.Equal(t, "Hello\n"+ImageProvidedMarker, messages[1].Content)
		assert.Empty(t, messages[1].Images, "stored images are never resent")
		assert.Equal(t, llm.RoleAssistant, messages[2].Role)
		assert.Equal(t, "And now?", messages[3].Content)
	})

	t.Run("selected personality is used when no prompt is sent", func(t *testing.T) {
		p, err := f.personalities.Create(ctx, &dto.CreatePersonalityRequest{Name: "Chef", Details: "Talk about food."})
		require.NoError(t, err)
		_, err = f.personalities.Select(ctx, p.Id)
		require.NoError(t, err)

		_, err = f.ask.Ask(ctx, &dto.AskRequest{Text: "Dinner?"})
		require.NoError(t, err)
		assert.Equal(t, "Talk about food.", f.provider.lastMessages()[0].Content)
	})
}

func TestAskService_Attachment(t *testing.T) {
	f := newAskFixture(t, &fakeProvider{reply: "Summarised."})

	_, err := f.ask.Ask(context.Background(), &dto.AskRequest{
		Text: "Summarise this",
		Attachment: &dto.AskAttachment{
			Filename:    "notes.txt",
			ContentType: "text/plain",
			Content:     []byte("line one"),
		},
	})
	require.NoError(t, err)

	last := f.provider.lastMessages()
	assert.Equal(t, "[Content of notes.txt]\nline one\n\nSummarise this", last[len(last)-1].Content)
}

func TestAskService_Validation(t *testing.T) {
	f := newAskFixture(t, &fakeProvider{reply: "x"})

	_, err := f.ask.Ask(context.Background(), &dto.AskRequest{Text: "   "})
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Nil(t, f.provider.lastMessages(), "the model is never called")
}

func TestAskService_ModelError(t *testing.T) {
	f := newAskFixture(t, &fakeProvider{err: errors.New("connection refused")})

	_, err := f.ask.Ask(context.Background(), &dto.AskRequest{Text: "Hello"})
	var network *apperror.NetworkError
	require.ErrorAs(t, err, &network)
	assert.Equal(t, "Model error: connection refused", err.Error())

	list, err := f.chats.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Contains(t, f.events.types(), "GENERATION_FAILED")
}

func TestAskService_Stop(t *testing.T) {
	ctx := context.Background()

	t.Run("stop with nothing running", func(t *testing.T) {
		f := newAskFixture(t, &fakeProvider{reply: "x"})
		res, err := f.ask.Stop(ctx)
		require.NoError(t, err)
		assert.False(t, res.Stopped)
	})

	t.Run("stop cancels the in-flight request", func(t *testing.T) {
		started := make(chan struct{})
		f := newAskFixture(t, &fakeProvider{reply: "too late", release: make(chan struct{}), started: started})

		done := make(chan *dto.AskResponse, 1)
		go func() {
			res, err := f.ask.Ask(ctx, &dto.AskRequest{Text: "long question"})
			assert.NoError(t, err)
			done <- res
		}()
		waitStarted(t, started)

		stop, err := f.ask.Stop(ctx)
		require.NoError(t, err)
		assert.True(t, stop.Stopped)

		res := <-done
		assert.True(t, res.Stopped)
		assert.Equal(t, StoppedMessage, res.Error)
		assert.Empty(t, res.Response)

		list, err := f.chats.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("a result that arrives after stop is discarded", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		f := newAskFixture(t, &fakeProvider{reply: "late answer", release: release, started: started, ignoreCancel: true})

		seed, err := f.chats.AppendTurn(ctx, "", &entity.Turn{Question: "earlier", Response: "earlier"})
		require.NoError(t, err)

		done := make(chan *dto.AskResponse, 1)
		go func() {
			res, err := f.ask.Ask(ctx, &dto.AskRequest{Text: "next", ChatId: seed.Id})
			assert.NoError(t, err)
			done <- res
		}()
		waitStarted(t, started)

		_, err = f.ask.Stop(ctx)
		require.NoError(t, err)
		close(release)

		res := <-done
		assert.True(t, res.Stopped)

		chat, err := f.chats.Show(ctx, seed.Id)
		require.NoError(t, err)
		assert.Len(t, chat.Conversation, 1, "the late response is not appended")
		assert.Contains(t, f.events.types(), "GENERATION_STOPPED")
	})

	t.Run("a new request preempts the running one", func(t *testing.T) {
		started := make(chan struct{})
		provider := &fakeProvider{reply: "second answer", release: make(chan struct{}), started: started}
		f := newAskFixture(t, provider)

		done := make(chan *dto.AskResponse, 1)
		go func() {
			res, err := f.ask.Ask(ctx, &dto.AskRequest{Text: "first"})
			assert.NoError(t, err)
			done <- res
		}()
		waitStarted(t, started)

		provider.mu.Lock()
		provider.release = nil
		provider.mu.Unlock()

		second, err := f.ask.Ask(ctx, &dto.AskRequest{Text: "second"})
		require.NoError(t, err)
		assert.Equal(t, "second answer", second.Response)

		first := <-done
		assert.True(t, first.Stopped)

		list, err := f.chats.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "second", list[0].Conversation[0].Question)
	})
}

func TestTruncateSystemPrompt(t *testing.T) {
	t.Run("short prompt is untouched", func(t *testing.T) {
		got, truncated := TruncateSystemPrompt("Be nice.")
		assert.False(t, truncated)
		assert.Equal(t, "Be nice.", got)
	})

	t.Run("cuts after a late sentence end", func(t *testing.T) {
		prompt := strings.Repeat("a", 1970) + "." + strings.Repeat("b", 100)
		got, truncated := TruncateSystemPrompt(prompt)
		assert.True(t, truncated)
		assert.Equal(t, strings.Repeat("a", 1970)+".", got)
	})

	t.Run("cuts at a late word boundary", func(t *testing.T) {
		prompt := strings.Repeat("a", 1990) + " " + strings.Repeat("b", 100)
		got, _ := TruncateSystemPrompt(prompt)
		assert.Equal(t, strings.Repeat("a", 1990), got)
	})

	t.Run("hard cut otherwise", func(t *testing.T) {
		got, _ := TruncateSystemPrompt(strings.Repeat("é", 2500))
		assert.Equal(t, MaxSystemPromptRunes, len([]rune(got)))
	})
}
