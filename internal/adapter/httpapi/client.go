package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ragchat/internal/domain"
)

// Client drives a ragchat backend over HTTP. It implements the same
// ports as the in-process knowledge base and generator, so the dialog
// session cannot tell local and remote backends apart.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Retrieve searches the backend for context texts.
func (c *Client) Retrieve(ctx context.Context, query string, k int) ([]string, domain.Timing, error) {
	var resp searchResponse
	err := c.post(ctx, "/search", searchRequest{Query: query, TopK: k}, &resp)
	if err != nil {
		return nil, domain.Timing{}, &domain.BackendError{Op: "search", Err: err}
	}

	timing := domain.Timing{
		Embed:  durationFromSeconds(resp.Timing.Vectorization),
		Search: durationFromSeconds(resp.Timing.Search),
		Total:  durationFromSeconds(resp.Timing.Total),
	}
	return resp.Documents, timing, nil
}

// Remember stores one text with metadata.
func (c *Client) Remember(ctx context.Context, text string, meta domain.RecordMetadata) (string, error) {
	var resp addResponse
	err := c.post(ctx, "/add", addRequest{Text: text, Metadata: &meta}, &resp)
	if err != nil {
		return "", &domain.BackendError{Op: "add", Err: err}
	}
	if !resp.Success {
		return "", &domain.BackendError{Op: "add", Err: fmt.Errorf("%s", resp.Message)}
	}
	return resp.DocID, nil
}

// RememberBatch stores several texts in one call.
func (c *Client) RememberBatch(ctx context.Context, texts []string, metas []domain.RecordMetadata) error {
	if len(texts) != len(metas) {
		return fmt.Errorf("texts/metadata length mismatch: %d vs %d", len(texts), len(metas))
	}

	reqs := make([]addRequest, len(texts))
	for i := range texts {
		meta := metas[i]
		reqs[i] = addRequest{Text: texts[i], Metadata: &meta}
	}

	var resp batchAddResponse
	if err := c.post(ctx, "/batch_add", reqs, &resp); err != nil {
		return &domain.BackendError{Op: "batch add", Err: err}
	}
	return nil
}

// Count returns the backend's document count.
func (c *Client) Count(ctx context.Context) (int, error) {
	var resp infoResponse
	if err := c.get(ctx, "/info", &resp); err != nil {
		return 0, &domain.BackendError{Op: "info", Err: err}
	}
	return resp.DocumentCount, nil
}

// Generate produces text for the prompt with the named model.
func (c *Client) Generate(ctx context.Context, model, prompt string, options map[string]any) (string, error) {
	var resp generateAPIResponse
	err := c.post(ctx, "/generate", generateAPIRequest{
		Model:   model,
		Prompt:  prompt,
		Options: options,
	}, &resp)
	if err != nil {
		return "", &domain.BackendError{Op: "generate", Err: err}
	}
	return resp.Response, nil
}

// Chat produces the next assistant message for a conversation.
func (c *Client) Chat(ctx context.Context, model string, messages []domain.Turn) (string, error) {
	var resp chatAPIResponse
	err := c.post(ctx, "/chat", chatAPIRequest{Model: model, Messages: messages}, &resp)
	if err != nil {
		return "", &domain.BackendError{Op: "chat", Err: err}
	}
	return resp.Message.Text, nil
}

// ListModels returns the model identifiers the backend serves.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var resp modelsResponse
	if err := c.get(ctx, "/models", &resp); err != nil {
		return nil, &domain.BackendError{Op: "list models", Err: err}
	}
	return resp.Models, nil
}

// RAG runs the whole pipeline server-side and returns the answer.
func (c *Client) RAG(ctx context.Context, query, model string, topK int) (string, int, error) {
	var resp ragResponse
	err := c.post(ctx, "/rag", ragRequest{Query: query, Model: model, TopK: topK}, &resp)
	if err != nil {
		return "", 0, &domain.BackendError{Op: "rag", Err: err}
	}
	return resp.Answer, resp.DocumentsFound, nil
}

// Health probes the backend.
func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	var resp healthResponse
	if err := c.get(ctx, "/health", &resp); err != nil {
		return domain.Health{}, &domain.BackendError{Op: "health", Err: err}
	}

	health := domain.Health{
		Status:          resp.Status,
		Services:        resp.Services,
		ModelsAvailable: resp.ModelsAvailable,
	}
	if health.Status != domain.Healthy {
		return health, fmt.Errorf("backend unhealthy: %v", resp.Services)
	}
	return health, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, out any) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
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
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Detail != "" {
			if strings.Contains(apiErr.Detail, "is not available") {
				return fmt.Errorf("%w: %s", domain.ErrModelNotAvailable, apiErr.Detail)
			}
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func durationFromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
