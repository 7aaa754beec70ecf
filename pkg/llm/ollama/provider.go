package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"offline-chat-be/pkg/llm"
)

const backendName = "ollama"

// OllamaProvider calls a local Ollama server's /api/chat without streaming.
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	// KeepAlive tells Ollama how long to keep the model loaded after a call.
	KeepAlive string
	Client    *http.Client
}

var (
	_ llm.LLMProvider   = (*OllamaProvider)(nil)
	_ llm.HealthChecker = (*OllamaProvider)(nil)
)

var ErrModelMissing = errors.New("model is not pulled")

func NewOllamaProvider(baseURL, modelName string, timeout time.Duration) *OllamaProvider {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: modelName,
		KeepAlive: "30m",
		Client:    &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	Stream    bool      `json:"stream"`
	KeepAlive string    `json:"keep_alive,omitempty"`
	Options   options   `json:"options"`
}

type message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message    message `json:"message"`
	Done       bool    `json:"done"`
	DoneReason string  `json:"done_reason"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	settings := llm.Apply(llm.Options{Temperature: 0.7}, opts...)

	msgs := make([]message, len(history))
	for i, m := range history {
		msgs[i] = message{Role: m.Role, Content: m.Content, Images: m.Images}
	}

	var resp chatResponse
	err := llm.DoJSON(ctx, o.Client, backendName, http.MethodPost, o.BaseURL+"/api/chat", nil, chatRequest{
		Model:     o.ModelName,
		Messages:  msgs,
		KeepAlive: o.KeepAlive,
		Options: options{
			Temperature: settings.Temperature,
			NumPredict:  settings.MaxTokens,
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	if !resp.Done {
		return "", fmt.Errorf("ollama returned an unfinished response")
	}
	return resp.Message.Content, nil
}

// Ping checks that the server answers and has the configured model. A name
// without a tag matches ":latest".
func (o *OllamaProvider) Ping(ctx context.Context) error {
	var tags tagsResponse
	if err := llm.DoJSON(ctx, o.Client, backendName, http.MethodGet, o.BaseURL+"/api/tags", nil, nil, &tags); err != nil {
		return err
	}

	want := o.ModelName
	if !strings.Contains(want, ":") {
		want += ":latest"
	}
	for _, m := range tags.Models {
		if m.Name == want || m.Name == o.ModelName {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelMissing, o.ModelName)
}
