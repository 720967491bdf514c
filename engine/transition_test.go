package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/accordo-ai/accordo/conversation"
	"github.com/accordo-ai/accordo/observability"
	"github.com/accordo-ai/accordo/store"
)

type recordingObserver struct {
	events []observability.Event
}

func (r *recordingObserver) OnEvent(_ context.Context, event observability.Event) {
	r.events = append(r.events, event)
}

func TestTransition_ReportsRejectedEdge(t *testing.T) {
	rec := &recordingObserver{}
	e := &Engine{observer: rec}
	deal := &store.Deal{ID: uuid.Must(uuid.NewV7()), State: conversation.NewState()}
	deal.State.Phase = conversation.PhaseTerminal

	e.transition(context.Background(), deal, conversation.PhaseNegotiating)

	if deal.State.Phase != conversation.PhaseTerminal {
		t.Errorf("phase must not change on a rejected edge, got %s", deal.State.Phase)
	}
	if len(rec.events) != 1 || rec.events[0].Type != EventError {
		t.Fatalf("events: got %+v, want one %s", rec.events, EventError)
	}
	if rec.events[0].Level != observability.LevelError {
		t.Errorf("level: got %d", rec.events[0].Level)
	}
}

func TestTransition_ValidEdgeIsSilent(t *testing.T) {
	rec := &recordingObserver{}
	e := &Engine{observer: rec}
	deal := &store.Deal{ID: uuid.Must(uuid.NewV7()), State: conversation.NewState()}

	e.transition(context.Background(), deal, conversation.PhaseNegotiating)

	if deal.State.Phase != conversation.PhaseNegotiating {
		t.Errorf("phase: got %s, want NEGOTIATING", deal.State.Phase)
	}
	if len(rec.events) != 0 {
		t.Errorf("valid edge must emit nothing, got %+v", rec.events)
	}
}
