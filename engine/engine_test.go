package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/accordo-ai/accordo/conversation"
	"github.com/accordo-ai/accordo/core/offer"
	"github.com/accordo-ai/accordo/engine"
	"github.com/accordo-ai/accordo/llm"
	"github.com/accordo-ai/accordo/negotiate"
	"github.com/accordo-ai/accordo/store"
)

func newEngine(t *testing.T, client llm.Client) (*engine.Engine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := engine.DefaultConfig()
	cfg.Observer = "noop"

	e, err := engine.New(cfg, st, client)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e, st
}

func startDeal(t *testing.T, e *engine.Engine) *store.Deal {
	t.Helper()
	deal, err := e.StartDeal(context.Background(), offer.Requisition{
		TargetUnitPrice: 100,
		PaymentTerms:    "Net 30",
	}, store.ModeInsights)
	if err != nil {
		t.Fatalf("StartDeal: %v", err)
	}
	return deal
}

func TestStartDeal_DerivesConfig(t *testing.T) {
	e, _ := newEngine(t, nil)
	deal := startDeal(t, e)

	if deal.Config.Price.Min != 85 || deal.Config.Price.Max != 120 {
		t.Errorf("price band: got [%v, %v], want [85, 120]", deal.Config.Price.Min, deal.Config.Price.Max)
	}
	if deal.Status != store.StatusNegotiating {
		t.Errorf("status: got %s", deal.Status)
	}
	if deal.State.Phase != conversation.PhaseWaitingForOffer {
		t.Errorf("phase: got %s", deal.State.Phase)
	}
}

func TestProcessTurn_UnknownDeal(t *testing.T) {
	e, _ := newEngine(t, nil)

	_, err := e.ProcessTurn(context.Background(), uuid.Must(uuid.NewV7()), "hello")
	if !errors.Is(err, store.ErrDealNotFound) {
		t.Fatalf("got %v, want ErrDealNotFound", err)
	}
}

func TestProcessTurn_CounterThenAccept(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, nil)
	deal := startDeal(t, e)

	res, err := e.ProcessTurn(ctx, deal.ID, "We can offer $105 per unit with Net 45 payment terms.")
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	d := res.AssistantMessage.Decision
	if d == nil || d.Action != negotiate.ActionCounter {
		t.Fatalf("turn 1 decision: %+v", d)
	}
	if d.Counter == nil || d.Counter.Price() != 95 {
		t.Fatalf("turn 1 counter: %+v", d.Counter)
	}
	if !strings.Contains(res.AssistantMessage.Content, "$95") {
		t.Errorf("reply must state the counter price: %q", res.AssistantMessage.Content)
	}
	if res.Deal.Round != 1 {
		t.Errorf("round after turn 1: got %d", res.Deal.Round)
	}
	if res.Deal.State.Phase != conversation.PhaseNegotiating {
		t.Errorf("phase after turn 1: got %s", res.Deal.State.Phase)
	}

	res, err = e.ProcessTurn(ctx, deal.ID, "Alright, we could meet you at $97 with Net 30.")
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	d = res.AssistantMessage.Decision
	if d == nil || d.Action != negotiate.ActionAccept {
		t.Fatalf("turn 2 decision: %+v", d)
	}
	if res.Deal.Status != store.StatusAccepted {
		t.Errorf("status: got %s, want ACCEPTED", res.Deal.Status)
	}
	if !res.Deal.State.Phase.Terminal() {
		t.Errorf("phase: got %s, want TERMINAL", res.Deal.State.Phase)
	}
	if !strings.Contains(res.AssistantMessage.Content, "$97") {
		t.Errorf("acceptance must state the price: %q", res.AssistantMessage.Content)
	}

	_, err = e.ProcessTurn(ctx, deal.ID, "Actually, can we talk more?")
	if !errors.Is(err, engine.ErrDealTerminal) {
		t.Fatalf("terminal deal turn: got %v, want ErrDealTerminal", err)
	}
}

func TestProcessTurn_PartialOffersMergeAcrossTurns(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, nil)
	deal := startDeal(t, e)

	res, err := e.ProcessTurn(ctx, deal.ID, "We usually work on Net 60 payment terms.")
	if err != nil {
		t.Fatal(err)
	}
	if res.AssistantMessage.Decision != nil {
		t.Error("no price yet, so no decision should be made")
	}
	if res.Deal.Round != 1 {
		t.Errorf("round after terms-only turn: got %d, want 1", res.Deal.Round)
	}

	res, err = e.ProcessTurn(ctx, deal.ID, "Price-wise, think $110 per unit.")
	if err != nil {
		t.Fatal(err)
	}
	if res.AssistantMessage.Decision == nil {
		t.Fatal("merged offer has a price, expected a decision")
	}
	merged := res.Deal.State.LastVendorOffer
	if merged.Price() != 110 || merged.Terms() != "Net 60" {
		t.Errorf("merged offer: got %s", merged.String())
	}
}

func TestProcessTurn_RoundAdvancesEveryTurn(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, nil)
	deal := startDeal(t, e)

	res, err := e.ProcessTurn(ctx, deal.ID, "Not interested.")
	if err != nil {
		t.Fatal(err)
	}
	if res.Deal.Round != 1 {
		t.Errorf("round after refusal turn: got %d, want 1", res.Deal.Round)
	}

	res, err = e.ProcessTurn(ctx, deal.ID, "We usually work on Net 60 payment terms.")
	if err != nil {
		t.Fatal(err)
	}
	if res.Deal.Round != 2 {
		t.Errorf("round after terms-only turn: got %d, want 2", res.Deal.Round)
	}
}

func TestProcessTurn_ChatterExhaustsRounds(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, nil)
	deal := startDeal(t, e)

	// Non-offer, non-refusal chatter must not keep a deal alive past
	// the round limit.
	chatter := "Our procurement committee is still reviewing your proposal."

	for i := 0; i < 9; i++ {
		res, err := e.ProcessTurn(ctx, deal.ID, chatter)
		if err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
		if res.Deal.Terminal() {
			t.Fatalf("deal ended after %d turns", i+1)
		}
	}

	res, err := e.ProcessTurn(ctx, deal.ID, chatter)
	if err != nil {
		t.Fatal(err)
	}
	if res.Deal.Round != 10 {
		t.Errorf("round: got %d, want 10", res.Deal.Round)
	}
	if res.Deal.Status != store.StatusEscalated {
		t.Errorf("status: got %s, want ESCALATED", res.Deal.Status)
	}
	if res.Deal.State.EscalationReason == "" {
		t.Error("escalation reason must be recorded")
	}
}

func TestProcessTurn_RefusalLimitEscalates(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, nil)
	deal := startDeal(t, e)

	for i := 0; i < 2; i++ {
		res, err := e.ProcessTurn(ctx, deal.ID, "Not interested.")
		if err != nil {
			t.Fatalf("refusal %d: %v", i+1, err)
		}
		if res.Deal.Terminal() {
			t.Fatalf("deal ended after %d refusals", i+1)
		}
		if res.AssistantMessage.Decision != nil {
			t.Error("refusal turns must not score or decide")
		}
	}

	res, err := e.ProcessTurn(ctx, deal.ID, "Not interested.")
	if err != nil {
		t.Fatalf("refusal 3: %v", err)
	}
	if res.Deal.Status != store.StatusEscalated {
		t.Errorf("status: got %s, want ESCALATED", res.Deal.Status)
	}
	if res.Deal.State.RefusalCount != 3 {
		t.Errorf("refusal count: got %d", res.Deal.State.RefusalCount)
	}
	if res.Deal.State.EscalationReason == "" {
		t.Error("escalation reason must be recorded")
	}
}

func TestProcessTurn_AsksForPreferenceThenAcknowledges(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, nil)
	deal := startDeal(t, e)

	// A vendor that never moves gives no confident preference signal
	// at first, then resolves to NEITHER once enough history exists.
	rigid := "Our position is $110 per unit with Net 45 payment terms."

	for i := 0; i < 2; i++ {
		if _, err := e.ProcessTurn(ctx, deal.ID, rigid); err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
	}

	res, err := e.ProcessTurn(ctx, deal.ID, rigid)
	if err != nil {
		t.Fatal(err)
	}
	if res.Deal.State.Phase != conversation.PhaseWaitingForPreference {
		t.Fatalf("phase after turn 3: got %s, want WAITING_FOR_PREFERENCE", res.Deal.State.Phase)
	}

	res, err = e.ProcessTurn(ctx, deal.ID, rigid)
	if err != nil {
		t.Fatal(err)
	}
	if res.Deal.State.VendorPreference != conversation.PreferenceNeither {
		t.Errorf("preference: got %q, want NEITHER", res.Deal.State.VendorPreference)
	}
	if res.Deal.State.Phase != conversation.PhaseNegotiating {
		t.Errorf("phase after preference resolves: got %s", res.Deal.State.Phase)
	}
}

func TestProcessTurn_FallbackOnClientError(t *testing.T) {
	ctx := context.Background()
	client := llm.NewMockClient().Fail(errors.New("upstream timeout"))
	e, _ := newEngine(t, client)
	deal := startDeal(t, e)

	res, err := e.ProcessTurn(ctx, deal.ID, "We can offer $105 per unit with Net 45 payment terms.")
	if err != nil {
		t.Fatalf("turn must survive a generation failure: %v", err)
	}
	if !strings.Contains(res.AssistantMessage.Content, "$95") {
		t.Errorf("fallback reply must carry the exact counter price: %q", res.AssistantMessage.Content)
	}
}

func TestResetDeal(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, nil)
	deal := startDeal(t, e)

	for i := 0; i < 3; i++ {
		if _, err := e.ProcessTurn(ctx, deal.ID, "Not interested."); err != nil {
			t.Fatal(err)
		}
	}
	got, err := e.GetDeal(ctx, deal.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Terminal() {
		t.Fatal("setup: deal should be terminal")
	}

	reset, err := e.ResetDeal(ctx, deal.ID)
	if err != nil {
		t.Fatalf("ResetDeal: %v", err)
	}
	if reset.Status != store.StatusNegotiating || reset.Round != 0 {
		t.Errorf("reset deal: %+v", reset)
	}
	if reset.State.Phase != conversation.PhaseWaitingForOffer || reset.State.RefusalCount != 0 {
		t.Errorf("reset state: %+v", reset.State)
	}

	// Negotiation continues after the reset.
	res, err := e.ProcessTurn(ctx, deal.ID, "Fresh start: $98 per unit with Net 30.")
	if err != nil {
		t.Fatal(err)
	}
	if res.AssistantMessage.Decision == nil {
		t.Error("expected a decision on the post-reset turn")
	}
}
