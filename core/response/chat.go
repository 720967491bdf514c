// Package response parses completion responses from the text-generation
// service. The envelope follows the common chat-completions shape: a list of
// choices, each carrying one message, plus optional token usage.
package response

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TokenUsage reports token consumption for a completion request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the parsed completion envelope.
type ChatResponse struct {
	ID      string `json:"id,omitempty"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// ParseChat parses a chat completion from JSON bytes.
func ParseChat(body []byte) (*ChatResponse, error) {
	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}
	return &resp, nil
}

// Content returns the first choice's message content with surrounding
// whitespace trimmed, or "" when the response carries no choices. An empty
// result is the caller's signal to treat the completion as failed.
func (r *ChatResponse) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Choices[0].Message.Content)
}
