package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"offline-chat-be/pkg/llm"
)

const backendName = "chat completions"

// Provider talks to any server exposing the OpenAI chat completions API,
// such as llama.cpp or LM Studio running locally.
type Provider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var (
	_ llm.LLMProvider   = (*Provider)(nil)
	_ llm.HealthChecker = (*Provider)(nil)
)

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewProvider(apiKey, baseURL, model string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = "http://localhost:8080/v1"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Provider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// toChatMessage switches to content parts only when images are attached;
// plain string content is what most local servers expect.
func toChatMessage(m llm.Message) chatMessage {
	if len(m.Images) == 0 {
		return chatMessage{Role: m.Role, Content: m.Content}
	}

	parts := make([]contentPart, 0, len(m.Images)+1)
	for _, img := range m.Images {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/jpeg;base64," + img},
		})
	}
	if m.Content != "" {
		parts = append(parts, contentPart{Type: "text", Text: m.Content})
	}
	return chatMessage{Role: m.Role, Content: parts}
}

func (p *Provider) headers() map[string]string {
	if p.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	settings := llm.Apply(llm.Options{Temperature: 0.7}, options...)

	messages := make([]chatMessage, len(history))
	for i, m := range history {
		messages[i] = toChatMessage(m)
	}

	var resp chatResponse
	err := llm.DoJSON(ctx, p.client, backendName, http.MethodPost, p.baseURL+"/chat/completions", p.headers(), chatRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices from chat completions")
	}
	return resp.Choices[0].Message.Content, nil
}

// Ping lists the server's models. Local servers often serve a single model
// under any name, so only reachability is checked.
func (p *Provider) Ping(ctx context.Context) error {
	return llm.DoJSON(ctx, p.client, backendName, http.MethodGet, p.baseURL+"/models", p.headers(), nil, nil)
}
