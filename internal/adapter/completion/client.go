package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eslsoft/myenglish/internal/infrastructure/config"
)

// Message is one conversation turn sent to the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries a system prompt plus the conversation for one completion.
type Request struct {
	System   string
	Messages []Message
}

// Client produces a text completion for a request. Implementations must honor
// context cancellation; a cancelled call returns the context error unwrapped
// so callers can tell cancellation from failure.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type httpClient struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

// NewClient builds the messages-API client from application config.
func NewClient(cfg *config.Config) Client {
	return &httpClient{
		baseURL:   strings.TrimRight(cfg.Completion.BaseURL, "/"),
		apiKey:    cfg.Completion.APIKey,
		model:     cfg.Completion.Model,
		maxTokens: cfg.Completion.MaxTokens,
		client:    &http.Client{},
	}
}

type wireRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type wireResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *httpClient) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(wireRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    req.System,
		Messages:  req.Messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("call completion service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	var decoded wireResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode completion response (status %d): %w", resp.StatusCode, err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("completion service error: %s", decoded.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion service returned status %d", resp.StatusCode)
	}
	if len(decoded.Content) == 0 {
		return "", nil
	}
	return decoded.Content[0].Text, nil
}
