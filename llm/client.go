package llm

import (
	"context"
	"errors"
	"time"

	"github.com/accordo-ai/accordo/core/protocol"
)

// ErrEmptyCompletion means the service answered but produced no usable
// text. Callers treat it like any other completion failure.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Request is a single completion call: a system instruction, the prior
// conversation turns, and provider-specific options flattened into the
// request body.
type Request struct {
	System  string
	Turns   []protocol.Message
	Options map[string]any
}

// Client generates a completion for a request. Implementations must
// honor ctx cancellation and return ErrEmptyCompletion (or wrap it)
// when the provider returns nothing.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a completion provider.
type Config struct {
	Provider string        `json:"provider"`
	BaseURL  string        `json:"base_url"`
	APIKey   string        `json:"api_key"`
	Model    string        `json:"model"`
	Timeout  time.Duration `json:"timeout"`
}

// DefaultConfig returns settings for a local OpenAI-compatible endpoint.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		BaseURL:  "http://localhost:11434/v1",
		Model:    "llama3.2",
		Timeout:  30 * time.Second,
	}
}

// Merge overlays non-zero fields of other onto c.
func (c Config) Merge(other Config) Config {
	if other.Provider != "" {
		c.Provider = other.Provider
	}
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.APIKey != "" {
		c.APIKey = other.APIKey
	}
	if other.Model != "" {
		c.Model = other.Model
	}
	if other.Timeout != 0 {
		c.Timeout = other.Timeout
	}
	return c
}

// messages prepends the system instruction to the conversation turns in
// the wire order OpenAI-compatible endpoints expect.
func (r Request) messages() []protocol.Message {
	msgs := make([]protocol.Message, 0, len(r.Turns)+1)
	if r.System != "" {
		msgs = append(msgs, protocol.NewMessage(protocol.RoleSystem, r.System))
	}
	return append(msgs, r.Turns...)
}
