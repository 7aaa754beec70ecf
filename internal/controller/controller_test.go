package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/pkg/logger"
	"offline-chat-be/internal/pkg/serverutils"
	"offline-chat-be/internal/repository/memory"
	"offline-chat-be/internal/repository/migration"
	"offline-chat-be/internal/repository/unitofwork"
	"offline-chat-be/internal/service"
	"offline-chat-be/pkg/database"
	"offline-chat-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoProvider struct{}

func (echoProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "echo: " + history[len(history)-1].Content, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := database.NewInMemorySQLite()
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	log := logger.NewNopLogger()
	uowFactory := unitofwork.NewRepositoryFactory(db)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })
	dir := t.TempDir()

	chats := service.NewChatService(uowFactory, nil, log)
	personalities := service.NewPersonalityService(uowFactory)
	ask := service.NewAskService(chats, personalities, echoProvider{}, service.NewGenerationTracker(),
		service.NewPublisherService("analysis", pubSub), nil, log, service.AskServiceConfig{Model: "echo"})

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))

	NewAskController(ask).RegisterRoutes(app)
	NewChatController(chats).RegisterRoutes(app)
	NewCategoryController("/categories", service.NewCategoryService(entity.CategoryKindChat, uowFactory, nil, log)).RegisterRoutes(app)
	NewCategoryController("/note-categories", service.NewCategoryService(entity.CategoryKindNote, uowFactory, nil, log)).RegisterRoutes(app)
	NewNoteController(service.NewNoteService(uowFactory)).RegisterRoutes(app)
	NewPersonalityController(personalities).RegisterRoutes(app)
	NewSettingsController(
		service.NewPromptHistoryService(uowFactory),
		service.NewPreferenceService(uowFactory),
		service.NewViewStateService(memory.NewViewStateRepository(time.Hour)),
	).RegisterRoutes(app)
	NewDataController(
		service.NewSearchService(uowFactory),
		service.NewBackupService(uowFactory, nil, log),
		service.NewAnalysisService(pubSub, "analysis", filepath.Join(dir, "analysis"), logger.NewIsolatedLogger(filepath.Join(dir, "analysis.log")), log),
	).RegisterRoutes(app)

	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var env envelope
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &env), string(body))
	}
	return res.StatusCode, env
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestCategoryRoutes(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, jsonRequest(http.MethodPost, "/categories", map[string]string{"name": "Work"}))
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	created := decode[struct {
		Category struct{ Id, Name string } `json:"category"`
	}](t, env.Data)
	assert.Equal(t, "Work", created.Category.Name)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"duplicate name", jsonRequest(http.MethodPost, "/categories", map[string]string{"name": "work"}), http.StatusConflict},
		{"missing name", jsonRequest(http.MethodPost, "/categories", map[string]string{}), http.StatusBadRequest},
		{"protected delete", jsonRequest(http.MethodDelete, "/categories/"+entity.UncategorizedId, nil), http.StatusForbidden},
		{"unknown rename", jsonRequest(http.MethodPut, "/categories/nope/rename", map[string]string{"new_name": "X"}), http.StatusNotFound},
		{"unknown update", jsonRequest(http.MethodPut, "/categories/nope", map[string]string{"name": "X"}), http.StatusNotFound},
		{"update needs a name", jsonRequest(http.MethodPut, "/categories/"+created.Category.Id, map[string]string{}), http.StatusBadRequest},
		{"update renames", jsonRequest(http.MethodPut, "/categories/"+created.Category.Id, map[string]string{"name": "Office"}), http.StatusOK},
		{"note namespace is separate", jsonRequest(http.MethodPost, "/note-categories", map[string]string{"name": "Work"}), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, tt.req)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status == http.StatusOK, env.Success)
			if tt.status != http.StatusOK {
				assert.Equal(t, tt.status, env.Code)
				assert.NotEmpty(t, env.Message)
			}
		})
	}

	status, env = do(t, app, jsonRequest(http.MethodGet, "/categories", nil))
	require.Equal(t, http.StatusOK, status)
	list := decode[struct {
		Categories []struct{ Id, Name string } `json:"categories"`
	}](t, env.Data)
	require.Len(t, list.Categories, 2)
	assert.Equal(t, entity.UncategorizedId, list.Categories[0].Id)
}

func TestAskAndChatRoutes(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, jsonRequest(http.MethodPost, "/ask", map[string]string{"text": "Hello"}))
	require.Equal(t, http.StatusOK, status)
	answer := decode[struct {
		Response string `json:"response"`
		ChatId   string `json:"chat_id"`
	}](t, env.Data)
	assert.Equal(t, "echo: Hello", answer.Response)
	require.NotEmpty(t, answer.ChatId)

	status, _ = do(t, app, jsonRequest(http.MethodPost, "/ask", map[string]string{"text": ""}))
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = do(t, app, jsonRequest(http.MethodPut, "/chats/"+answer.ChatId+"/rename", map[string]string{"new_name": "Greeting"}))
	require.Equal(t, http.StatusOK, status)
	shown := decode[struct {
		Chat struct {
			Title        string            `json:"title"`
			Conversation []json.RawMessage `json:"conversation"`
		} `json:"chat"`
	}](t, env.Data)
	assert.Equal(t, "Greeting", shown.Chat.Title)
	assert.Len(t, shown.Chat.Conversation, 1)

	status, _ = do(t, app, jsonRequest(http.MethodGet, "/chats/missing", nil))
	assert.Equal(t, http.StatusNotFound, status)

	status, env = do(t, app, jsonRequest(http.MethodPut, "/chats/"+answer.ChatId, map[string]string{"title": "Hi"}))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hi", decode[struct {
		Chat struct{ Title string } `json:"chat"`
	}](t, env.Data).Chat.Title)

	status, _ = do(t, app, jsonRequest(http.MethodGet, "/chats/"+answer.ChatId+"?order=recent", nil))
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, app, jsonRequest(http.MethodGet, "/chats/"+answer.ChatId+"?order=sideways", nil))
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = do(t, app, jsonRequest(http.MethodPost, "/stop", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "No request in progress", env.Message)

	status, _ = do(t, app, jsonRequest(http.MethodDelete, "/chats/"+answer.ChatId, nil))
	require.Equal(t, http.StatusOK, status)
	status, env = do(t, app, jsonRequest(http.MethodGet, "/chats", nil))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"chats":[]}`, string(env.Data))
}

func TestAskMultipartAttachment(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("text", "Summarise"))
	part, err := form.CreateFormFile(askImageField, "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("first line"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/ask", &body)
	req.Header.Set(fiber.HeaderContentType, form.FormDataContentType())

	status, env := do(t, app, req)
	require.Equal(t, http.StatusOK, status)
	answer := decode[struct {
		Response     string `json:"response"`
		Conversation []struct {
			HasImage bool `json:"has_image"`
		} `json:"conversation"`
	}](t, env.Data)
	assert.True(t, strings.HasPrefix(answer.Response, "echo: [Content of notes.txt]\nfirst line"))
	require.Len(t, answer.Conversation, 1)
	assert.True(t, answer.Conversation[0].HasImage)
}

func TestBackupRoutes(t *testing.T) {
	app := newTestApp(t)

	status, _ := do(t, app, jsonRequest(http.MethodPost, "/notes", map[string]string{"title": "Groceries", "content": "milk"}))
	require.Equal(t, http.StatusOK, status)

	res, err := app.Test(jsonRequest(http.MethodGet, "/backup", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get(fiber.HeaderContentDisposition), "offline-chat-backup-")
	doc, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	res.Body.Close()

	var parsed struct {
		Structure map[string]string `json:"structure"`
	}
	require.NoError(t, json.Unmarshal(doc, &parsed))
	assert.Contains(t, parsed.Structure, service.PathNotes)

	status, _ = do(t, app, jsonRequest(http.MethodDelete, "/notes/missing", nil))
	assert.Equal(t, http.StatusNotFound, status)

	restoreReq := httptest.NewRequest(http.MethodPost, "/backup/restore", bytes.NewReader(doc))
	restoreReq.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	status, env := do(t, app, restoreReq)
	require.Equal(t, http.StatusOK, status)
	restored := decode[struct {
		Restored map[string]int `json:"restored"`
	}](t, env.Data)
	assert.Equal(t, 1, restored.Restored["notes"])

	badReq := httptest.NewRequest(http.MethodPost, "/backup/restore", strings.NewReader(`{"structure": 5}`))
	badReq.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	status, env = do(t, app, badReq)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.False(t, env.Success)

	status, env = do(t, app, jsonRequest(http.MethodGet, "/search?q=milk", nil))
	require.Equal(t, http.StatusOK, status)
	found := decode[struct {
		Results []struct{ Kind, Title string } `json:"results"`
	}](t, env.Data)
	require.Len(t, found.Results, 1)
	assert.Equal(t, "Groceries", found.Results[0].Title)
}

func TestSettingsRoutes(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, jsonRequest(http.MethodPost, "/personalities", map[string]string{"name": "Pirate", "details": "Talk like a pirate."}))
	require.Equal(t, http.StatusOK, status)
	pirate := decode[struct{ Id string }](t, env.Data)

	status, _ = do(t, app, jsonRequest(http.MethodPut, "/personalities/selection", map[string]string{"id": pirate.Id}))
	require.Equal(t, http.StatusOK, status)

	status, env = do(t, app, jsonRequest(http.MethodGet, "/personalities/resolve", nil))
	require.Equal(t, http.StatusOK, status)
	resolved := decode[struct {
		SystemPrompt string `json:"system_prompt"`
	}](t, env.Data)
	assert.Equal(t, "Talk like a pirate.", resolved.SystemPrompt)

	status, _ = do(t, app, jsonRequest(http.MethodDelete, "/personalities/default", nil))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, app, jsonRequest(http.MethodPut, "/preferences", map[string]string{"text_size": "huge"}))
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = do(t, app, jsonRequest(http.MethodPost, "/prompt-history", map[string]string{"text": "hello there"}))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"prompts":["hello there"]}`, string(env.Data))

	status, _ = do(t, app, jsonRequest(http.MethodGet, "/view-state", nil))
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = do(t, app, jsonRequest(http.MethodPut, "/view-state", map[string]interface{}{
		"client_id": "tab-1",
		"mode":      "notes",
	}))
	require.Equal(t, http.StatusOK, status)
	state := decode[struct{ Mode string }](t, env.Data)
	assert.Equal(t, "notes", state.Mode)
}

func TestAnalysisRoutes(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, jsonRequest(http.MethodDelete, "/analysis-data", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Cleared 0 analysis files", env.Message)

	status, env = do(t, app, jsonRequest(http.MethodGet, "/analysis-data", nil))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"files":[],"entries":[]}`, string(env.Data))
}
