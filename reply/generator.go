package reply

import (
	"context"
	"time"

	"github.com/accordo-ai/accordo/conversation"
	"github.com/accordo-ai/accordo/core/protocol"
	"github.com/accordo-ai/accordo/llm"
	"github.com/accordo-ai/accordo/observability"
)

// Events emitted by the generator.
const (
	EventGenerate observability.EventType = "reply.generate"
	EventFallback observability.EventType = "reply.fallback"
)

// Result is a generated or fallback reply. UsedFallback is true when
// the model's output was unavailable or failed validation.
type Result struct {
	Text         string
	Intent       conversation.Intent
	UsedFallback bool
}

// Generator produces validated vendor-facing replies. A nil client is
// allowed and always takes the fallback path.
type Generator struct {
	client   llm.Client
	observer observability.Observer
	timeout  time.Duration
}

func NewGenerator(client llm.Client, observer observability.Observer, timeout time.Duration) *Generator {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{client: client, observer: observer, timeout: timeout}
}

// Reply builds the intent prompt, asks the model for a reply in the
// context of the prior turns, and validates the result. Any generation
// error or validation failure substitutes the deterministic fallback;
// a turn never fails because the model did.
func (g *Generator) Reply(ctx context.Context, data PromptData, history []protocol.Message) Result {
	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventGenerate,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "reply",
		Data:      map[string]any{"intent": string(data.Intent)},
	})

	if g.client == nil {
		return g.fallback(ctx, data, "no client configured")
	}

	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.client.Complete(genCtx, llm.Request{
		System: SystemPrompt() + "\n\n" + BuildPrompt(data),
		Turns:  history,
	})
	if err != nil {
		return g.fallback(ctx, data, err.Error())
	}
	if err := Validate(text, data); err != nil {
		return g.fallback(ctx, data, err.Error())
	}

	return Result{Text: text, Intent: data.Intent}
}

func (g *Generator) fallback(ctx context.Context, data PromptData, reason string) Result {
	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventFallback,
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "reply",
		Data:      map[string]any{"intent": string(data.Intent), "reason": reason},
	})
	return Result{Text: Fallback(data), Intent: data.Intent, UsedFallback: true}
}
