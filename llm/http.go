package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/accordo-ai/accordo/core/response"
)

// HTTPClient talks to any OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewHTTPClient builds a client for cfg.BaseURL's /chat/completions
// route. The timeout bounds the whole round trip.
func NewHTTPClient(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

// marshalBody flattens request options into the top-level JSON object so
// provider knobs like temperature ride alongside model and messages.
func (c *HTTPClient) marshalBody(req Request) ([]byte, error) {
	body := map[string]any{
		"model":    c.model,
		"messages": req.messages(),
	}
	for k, v := range req.Options {
		body[k] = v
	}
	return json.Marshal(body)
}

func (c *HTTPClient) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := c.marshalBody(req)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: complete: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("llm: completion failed with status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	chat, err := response.ParseChat(raw)
	if err != nil {
		return "", fmt.Errorf("llm: parse response: %w", err)
	}
	content := chat.Content()
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
