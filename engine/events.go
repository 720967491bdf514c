package engine

import "github.com/accordo-ai/accordo/observability"

// Engine event types emitted during turn processing.
const (
	EventDealStart    observability.EventType = "engine.deal.start"
	EventDealReset    observability.EventType = "engine.deal.reset"
	EventTurnStart    observability.EventType = "engine.turn.start"
	EventTurnComplete observability.EventType = "engine.turn.complete"
	EventRefusal      observability.EventType = "engine.refusal"
	EventDecision     observability.EventType = "engine.decision"
	EventTerminal     observability.EventType = "engine.terminal"
	EventError        observability.EventType = "engine.error"
)
