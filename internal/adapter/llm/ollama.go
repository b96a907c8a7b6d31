package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ragchat/internal/domain"
)

// OllamaClient talks to a local Ollama server through its native API.
// Generation can take tens of seconds on small hardware, hence the long
// timeout. Failures come back as *domain.BackendError so the session can
// surface them without crashing.
type OllamaClient struct {
	baseURL string
	client  *http.Client
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response      string `json:"response"`
	TotalDuration int64  `json:"total_duration"`
	Error         string `json:"error,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []domain.Turn `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message domain.Turn `json:"message"`
	Error   string      `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

func NewOllamaClient(baseURL string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Generate produces text for the prompt. Options are forwarded to Ollama
// unexamined.
func (c *OllamaClient) Generate(ctx context.Context, model, prompt string, options map[string]any) (string, error) {
	var resp generateResponse
	err := c.post(ctx, "/api/generate", generateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: options,
	}, &resp)
	if err != nil {
		return "", &domain.BackendError{Op: "generate", Err: err}
	}
	if resp.Error != "" {
		return "", &domain.BackendError{Op: "generate", Err: fmt.Errorf("%s", resp.Error)}
	}
	return resp.Response, nil
}

// Chat produces the next assistant message for a conversation.
func (c *OllamaClient) Chat(ctx context.Context, model string, messages []domain.Turn) (string, error) {
	var resp chatResponse
	err := c.post(ctx, "/api/chat", chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
	}, &resp)
	if err != nil {
		return "", &domain.BackendError{Op: "chat", Err: err}
	}
	if resp.Error != "" {
		return "", &domain.BackendError{Op: "chat", Err: fmt.Errorf("%s", resp.Error)}
	}
	return resp.Message.Text, nil
}

// ListModels returns the model identifiers the server has pulled.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.BackendError{Op: "list models", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.BackendError{
			Op:  "list models",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, reqBody, out any) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
