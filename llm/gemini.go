package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/accordo-ai/accordo/core/protocol"
)

// GeminiClient adapts Google's generative model API to the Client
// interface. History turns are flattened into the prompt since the
// chat session API keeps server-side state we do not want.
type GeminiClient struct {
	model *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("llm: gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash-001"
	}
	return &GeminiClient{model: client.GenerativeModel(model)}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	var prompt strings.Builder
	if req.System != "" {
		prompt.WriteString(req.System)
		prompt.WriteString("\n\n")
	}
	for _, m := range req.Turns {
		label := "Vendor"
		if m.Role == protocol.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&prompt, "%s: %s\n", label, m.Content)
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		return "", fmt.Errorf("llm: gemini complete: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("llm: gemini returned non-text part")
	}
	out := strings.TrimSpace(string(text))
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
