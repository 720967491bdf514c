// Package engine runs the per-turn negotiation pipeline: refusal
// classification, offer extraction and merging, utility scoring and
// decision, intent resolution, reply generation, and atomic
// persistence of the turn.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/accordo-ai/accordo/conversation"
	"github.com/accordo-ai/accordo/core/offer"
	"github.com/accordo-ai/accordo/core/protocol"
	"github.com/accordo-ai/accordo/extract"
	"github.com/accordo-ai/accordo/llm"
	"github.com/accordo-ai/accordo/negotiate"
	"github.com/accordo-ai/accordo/observability"
	"github.com/accordo-ai/accordo/reply"
	"github.com/accordo-ai/accordo/store"
)

// Refusal and preference limits. Three classified refusals end the
// deal; preference detection waits for a minimum of conversation
// history before inferring anything.
const (
	refusalLimit          = 3
	preferenceMinMessages = 4
)

// Engine coordinates one negotiation turn at a time per deal.
type Engine struct {
	cfg       Config
	store     store.Store
	generator *reply.Generator
	observer  observability.Observer
	locks     *dealLocks
}

// New builds an engine on top of the given store and completion
// client. A nil client is allowed; every reply then uses the
// deterministic fallback.
func New(cfg Config, st store.Store, client llm.Client) (*Engine, error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("engine: resolve observer: %w", err)
	}
	return &Engine{
		cfg:       cfg,
		store:     st,
		generator: reply.NewGenerator(client, observer, cfg.LLM.Timeout),
		observer:  observer,
		locks:     newDealLocks(),
	}, nil
}

// TurnResult is everything one processed turn produced. UsedFallback
// reports that the reply came from the deterministic template rather
// than the completion service.
type TurnResult struct {
	Deal             *store.Deal
	VendorMessage    *store.Message
	AssistantMessage *store.Message
	UsedFallback     bool
}

// StartDeal creates a deal from a requisition. Negotiation parameters
// are derived deterministically from the requisition's target price
// and payment terms.
func (e *Engine) StartDeal(ctx context.Context, req offer.Requisition, mode store.DealMode) (*store.Deal, error) {
	cfg, err := offer.FromRequisition(req)
	if err != nil {
		return nil, fmt.Errorf("engine: derive config: %w", err)
	}
	if mode == "" {
		mode = store.ModeInsights
	}

	now := time.Now().UTC()
	deal := &store.Deal{
		ID:        uuid.Must(uuid.NewV7()),
		Status:    store.StatusNegotiating,
		Mode:      mode,
		Config:    cfg,
		State:     conversation.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateDeal(ctx, deal); err != nil {
		return nil, err
	}

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventDealStart,
		Level:     observability.LevelInfo,
		Timestamp: now,
		Source:    "engine",
		Data:      map[string]any{"deal_id": deal.ID.String(), "mode": string(mode)},
	})
	return deal, nil
}

// ResetDeal returns a deal to its initial state, clearing the
// conversation snapshot and refusal counters. The message history is
// kept; a system message marks the reset point.
func (e *Engine) ResetDeal(ctx context.Context, dealID uuid.UUID) (*store.Deal, error) {
	unlock := e.locks.lock(dealID)
	defer unlock()

	deal, err := e.store.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	deal.State.Reset()
	deal.Status = store.StatusNegotiating
	deal.Round = 0
	deal.UpdatedAt = time.Now().UTC()

	marker := &store.Message{
		ID:        ulid.Make().String(),
		DealID:    deal.ID,
		Role:      store.RoleSystem,
		Content:   "Negotiation reset to its starting point.",
		CreatedAt: deal.UpdatedAt,
	}
	if err := e.store.SaveTurn(ctx, deal, marker); err != nil {
		return nil, err
	}

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventDealReset,
		Level:     observability.LevelInfo,
		Timestamp: deal.UpdatedAt,
		Source:    "engine",
		Data:      map[string]any{"deal_id": deal.ID.String()},
	})
	return deal, nil
}

// GetDeal loads a deal.
func (e *Engine) GetDeal(ctx context.Context, dealID uuid.UUID) (*store.Deal, error) {
	return e.store.GetDeal(ctx, dealID)
}

// ListMessages returns a deal's message history in creation order.
func (e *Engine) ListMessages(ctx context.Context, dealID uuid.UUID) ([]*store.Message, error) {
	if _, err := e.store.GetDeal(ctx, dealID); err != nil {
		return nil, err
	}
	return e.store.ListMessages(ctx, dealID)
}

// ProcessTurn runs the full pipeline for one inbound vendor message.
// Turns on the same deal are serialized; the turn either persists
// completely or not at all.
func (e *Engine) ProcessTurn(ctx context.Context, dealID uuid.UUID, vendorText string) (*TurnResult, error) {
	unlock := e.locks.lock(dealID)
	defer unlock()

	deal, err := e.store.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrDealTerminal, deal.Status)
	}

	// One vendor message and its reply is one turn; every turn consumes
	// a round, whether or not it carried a scorable offer.
	deal.Round++

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "engine",
		Data:      map[string]any{"deal_id": deal.ID.String(), "round": deal.Round},
	})

	history, err := e.store.ListMessages(ctx, deal.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	vendorMsg := &store.Message{
		ID:        ulid.Make().String(),
		DealID:    deal.ID,
		Role:      store.RoleVendor,
		Content:   vendorText,
		CreatedAt: now,
	}

	var (
		decision *negotiate.Decision
		score    *float64
		prefSet  bool
	)
	refusal := extract.Refusal(vendorText)

	if refusal != extract.RefusalNone {
		e.handleRefusal(ctx, deal, refusal)
	} else {
		decision, score = e.handleOffer(ctx, deal, vendorText, vendorMsg)
		prefSet = e.detectPreference(ctx, deal, history, decision)
	}

	intent := conversation.Resolve(conversation.ResolveInput{
		Phase:             deal.State.Phase,
		Decision:          decision,
		Refusal:           refusal,
		Text:              vendorText,
		PreferenceJustSet: prefSet,
	})
	// The refusal limit forces escalation instead of another nudge.
	if refusal != extract.RefusalNone && deal.Terminal() {
		intent = conversation.IntentEscalate
	}

	e.applyOutcome(ctx, deal, decision, intent)

	// Turns without a scorable offer never reach the decision
	// algorithm's round-limit rule, so the limit is enforced here too.
	if !deal.Terminal() && deal.Round >= deal.Config.MaxRounds {
		e.terminate(ctx, deal, store.StatusEscalated, "round limit reached without agreement")
		intent = conversation.IntentEscalate
	}

	data := e.promptData(deal, intent, decision, refusal)
	result := e.generator.Reply(ctx, data, e.turnContext(history, vendorText))

	assistantMsg := &store.Message{
		ID:           ulid.Make().String(),
		DealID:       deal.ID,
		Role:         store.RoleAssistant,
		Content:      result.Text,
		Decision:     decision,
		UtilityScore: score,
		CreatedAt:    time.Now().UTC(),
	}

	deal.UpdatedAt = assistantMsg.CreatedAt
	if err := e.store.SaveTurn(ctx, deal, vendorMsg, assistantMsg); err != nil {
		return nil, err
	}

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "engine",
		Data: map[string]any{
			"deal_id":  deal.ID.String(),
			"round":    deal.Round,
			"intent":   string(intent),
			"status":   string(deal.Status),
			"fallback": result.UsedFallback,
		},
	})

	return &TurnResult{
		Deal:             deal,
		VendorMessage:    vendorMsg,
		AssistantMessage: assistantMsg,
		UsedFallback:     result.UsedFallback,
	}, nil
}

// handleRefusal updates refusal counters and, at the limit, forces the
// deal into escalation. A refusal turn skips extraction and scoring
// entirely.
func (e *Engine) handleRefusal(ctx context.Context, deal *store.Deal, refusal extract.RefusalType) {
	deal.State.RefusalCount++
	deal.State.LastRefusalType = refusal

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventRefusal,
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "engine",
		Data: map[string]any{
			"deal_id": deal.ID.String(),
			"type":    string(refusal),
			"count":   deal.State.RefusalCount,
		},
	})

	if deal.State.RefusalCount >= refusalLimit {
		e.terminate(ctx, deal, store.StatusEscalated, "vendor refused to engage after repeated attempts")
	}
}

// handleOffer extracts and merges the vendor's offer and, when a price
// is known, scores it and runs the decision algorithm.
func (e *Engine) handleOffer(ctx context.Context, deal *store.Deal, vendorText string, vendorMsg *store.Message) (*negotiate.Decision, *float64) {
	extracted := extract.Offer(vendorText)
	if extracted.FoundPrice || extracted.FoundTerms {
		o := extracted.Offer
		vendorMsg.ExtractedOffer = &o
		deal.State.LastVendorOffer = offer.Merge(deal.State.LastVendorOffer, extracted.Offer)
	}

	merged := deal.State.LastVendorOffer
	if !merged.HasPrice() {
		return nil, nil
	}

	if deal.State.Phase == conversation.PhaseWaitingForOffer {
		e.transition(ctx, deal, conversation.PhaseNegotiating)
	}

	var lastAssistantPrice *float64
	if deal.State.LastAssistantOffer.HasPrice() {
		p := deal.State.LastAssistantOffer.Price()
		lastAssistantPrice = &p
	}

	d := negotiate.Decide(negotiate.Input{
		Offer:              merged,
		Round:              deal.Round,
		LastAssistantPrice: lastAssistantPrice,
		Config:             deal.Config,
	})

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventDecision,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "engine",
		Data: map[string]any{
			"deal_id": deal.ID.String(),
			"round":   deal.Round,
			"action":  string(d.Action),
			"utility": d.Utility,
		},
	})

	return &d, &d.Utility
}

// detectPreference infers the vendor's preferred axis from their own
// offer history once enough messages exist. The first confident signal
// is recorded and sticky. When no confident signal exists and the
// conversation is otherwise countering, the engine asks directly.
func (e *Engine) detectPreference(ctx context.Context, deal *store.Deal, history []*store.Message, decision *negotiate.Decision) bool {
	if deal.State.VendorPreference != "" || len(history) < preferenceMinMessages {
		return false
	}

	var offers []offer.Offer
	for _, msg := range history {
		if msg.Role == store.RoleVendor && msg.ExtractedOffer != nil {
			offers = append(offers, *msg.ExtractedOffer)
		}
	}
	if !deal.State.LastVendorOffer.IsEmpty() {
		offers = append(offers, deal.State.LastVendorOffer)
	}

	pref, confident := conversation.DetectPreference(offers, deal.Config)
	if confident {
		set := deal.State.SetPreference(pref)
		if deal.State.Phase == conversation.PhaseWaitingForPreference {
			e.transition(ctx, deal, conversation.PhaseNegotiating)
		}
		return set
	}

	// No confident read: pause countering and ask the vendor outright.
	if decision != nil && decision.Action == negotiate.ActionCounter &&
		deal.State.Phase == conversation.PhaseNegotiating {
		e.transition(ctx, deal, conversation.PhaseWaitingForPreference)
	}
	return false
}

// applyOutcome moves the deal to its terminal status for decisions
// that end the negotiation and tracks the assistant's own offer for
// counters.
func (e *Engine) applyOutcome(ctx context.Context, deal *store.Deal, decision *negotiate.Decision, intent conversation.Intent) {
	if decision == nil || deal.Terminal() {
		return
	}

	switch decision.Action {
	case negotiate.ActionAccept:
		deal.State.LastAssistantOffer = deal.State.LastVendorOffer.Clone()
		e.terminate(ctx, deal, store.StatusAccepted, "")
	case negotiate.ActionWalkAway:
		e.terminate(ctx, deal, store.StatusWalkedAway, "")
	case negotiate.ActionEscalate:
		e.terminate(ctx, deal, store.StatusEscalated, "round limit reached without agreement")
	case negotiate.ActionCounter:
		if decision.Counter != nil && intent != conversation.IntentAskForPreference {
			deal.State.LastAssistantOffer = offer.Merge(deal.State.LastAssistantOffer, *decision.Counter)
		}
	}
}

// transition applies a phase change, reporting any edge the state
// machine rejects. The pipeline only requests valid edges; a rejection
// here means a phase guard regressed.
func (e *Engine) transition(ctx context.Context, deal *store.Deal, phase conversation.Phase) {
	if err := deal.State.Transition(phase); err != nil {
		e.observer.OnEvent(ctx, observability.Event{
			Type:      EventError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "engine",
			Data: map[string]any{
				"deal_id": deal.ID.String(),
				"error":   err.Error(),
			},
		})
	}
}

func (e *Engine) terminate(ctx context.Context, deal *store.Deal, status store.DealStatus, reason string) {
	deal.Status = status
	e.transition(ctx, deal, conversation.PhaseTerminal)
	if reason != "" {
		deal.State.EscalationReason = reason
	}

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventTerminal,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "engine",
		Data: map[string]any{
			"deal_id": deal.ID.String(),
			"status":  string(status),
			"reason":  reason,
		},
	})
}

// promptData assembles the values the reply layer must embed verbatim.
func (e *Engine) promptData(deal *store.Deal, intent conversation.Intent, decision *negotiate.Decision, refusal extract.RefusalType) reply.PromptData {
	data := reply.PromptData{
		Intent:      intent,
		RefusalType: refusal,
		Preference:  deal.State.VendorPreference,
	}
	if decision != nil {
		data.Counter = decision.Counter
	}
	if intent == conversation.IntentAccept {
		accepted := deal.State.LastVendorOffer.Clone()
		data.AcceptedOffer = &accepted
	}
	return data
}

// turnContext maps recent stored history plus the current vendor text
// into completion turns, bounded by the configured history limit.
func (e *Engine) turnContext(history []*store.Message, vendorText string) []protocol.Message {
	limit := e.cfg.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}

	turns := make([]protocol.Message, 0, len(history)+1)
	for _, msg := range history {
		switch msg.Role {
		case store.RoleVendor:
			turns = append(turns, protocol.NewMessage(protocol.RoleUser, msg.Content))
		case store.RoleAssistant:
			turns = append(turns, protocol.NewMessage(protocol.RoleAssistant, msg.Content))
		}
	}
	return append(turns, protocol.NewMessage(protocol.RoleUser, vendorText))
}
