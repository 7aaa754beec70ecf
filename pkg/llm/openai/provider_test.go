package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"offline-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Chat(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Hello!"}}]}`))
	}))
	defer srv.Close()

	p := NewProvider("secret", srv.URL+"/v1", "local-model", time.Second)
	reply, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "Describe", Images: []string{"aGVsbG8="}},
	}, llm.WithMaxTokens(64))
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)

	assert.Equal(t, "local-model", body["model"])
	assert.EqualValues(t, 64, body["max_tokens"])

	messages := body["messages"].([]interface{})
	parts := messages[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, parts, 2)
	image := parts[0].(map[string]interface{})
	assert.Equal(t, "image_url", image["type"])
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", image["image_url"].(map[string]interface{})["url"])
	assert.Equal(t, "Describe", parts[1].(map[string]interface{})["text"])
}

func TestProvider_ChatErrors(t *testing.T) {
	t.Run("error body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"context length exceeded"}}`))
		}))
		defer srv.Close()

		_, err := NewProvider("", srv.URL, "m", time.Second).Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
		var statusErr *llm.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, "context length exceeded", statusErr.Message)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := NewProvider("", srv.URL, "m", time.Second).Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
		assert.EqualError(t, err, "empty choices from chat completions")
	})
}

func TestProvider_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewProvider("", srv.URL+"/v1", "m", time.Second).Ping(context.Background()))
}
