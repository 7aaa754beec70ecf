// Package client is the browser-side half of the offline chat core: the
// request lifecycle controller, the workspace session state and the HTTP
// transport that talks to the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Transport is everything the client needs from the server.
type Transport interface {
	Ask(ctx context.Context, sub Submission) (*AskResult, error)
	// Stop asks the server to halt the in-flight generation. Best effort.
	Stop(ctx context.Context) error
	RecordPrompt(ctx context.Context, text string) error
	DeleteChat(ctx context.Context, id string) error
	DeleteCategory(ctx context.Context, kind CategoryKind, id string) error
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

type CategoryKind string

const (
	ChatCategories CategoryKind = "categories"
	NoteCategories CategoryKind = "note-categories"
)

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Submission is one captured request: the text, the attachment and the
// resolved system prompt at the moment of submit.
type Submission struct {
	Text         string
	SystemPrompt string
	ChatID       string
	Attachment   *Attachment
}

type Turn struct {
	Timestamp time.Time `json:"timestamp"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	HasImage  bool      `json:"has_image"`
	ImageData *string   `json:"image_data"`
}

type AskResult struct {
	Response     string  `json:"response"`
	ChatID       string  `json:"chat_id"`
	Conversation []*Turn `json:"conversation"`
	Error        string  `json:"error,omitempty"`
	Stopped      bool    `json:"stopped,omitempty"`
}

// SearchHit is one chat or note matching a search query.
type SearchHit struct {
	Kind      string    `json:"kind"`
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Snippet   string    `json:"snippet"`
	MatchedIn string    `json:"matched_in"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type HTTPTransport struct {
	BaseURL string
	Client  *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport talks to the server at baseURL. Timeout bounds every call,
// including /ask, so it should exceed the slowest expected generation.
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &HTTPTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTransport) Ask(ctx context.Context, sub Submission) (*AskResult, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	fields := map[string]string{
		"text":          sub.Text,
		"system_prompt": sub.SystemPrompt,
		"chat_id":       sub.ChatID,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if sub.Attachment != nil {
		part, err := form.CreateFormFile("image", sub.Attachment.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(sub.Attachment.Content); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	var result AskResult
	if err := t.do(ctx, http.MethodPost, "/ask", form.FormDataContentType(), &body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (t *HTTPTransport) Stop(ctx context.Context) error {
	return t.do(ctx, http.MethodPost, "/stop", "", nil, nil)
}

func (t *HTTPTransport) RecordPrompt(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	return t.do(ctx, http.MethodPost, "/prompt-history", "application/json", bytes.NewReader(payload), nil)
}

func (t *HTTPTransport) DeleteChat(ctx context.Context, id string) error {
	return t.do(ctx, http.MethodDelete, "/chats/"+url.PathEscape(id), "", nil, nil)
}

func (t *HTTPTransport) DeleteCategory(ctx context.Context, kind CategoryKind, id string) error {
	return t.do(ctx, http.MethodDelete, "/"+string(kind)+"/"+url.PathEscape(id), "", nil, nil)
}

func (t *HTTPTransport) Search(ctx context.Context, query string) ([]SearchHit, error) {
	var res struct {
		Results []SearchHit `json:"results"`
	}
	if err := t.do(ctx, http.MethodGet, "/search?q="+url.QueryEscape(query), "", nil, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

// do sends one request and decodes the envelope's data into out, if set.
func (t *HTTPTransport) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, t.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
